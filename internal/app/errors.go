package app

// OpError is a client-visible rejection. Code travels on the ack (or the
// out-of-band error frame when no ack was requested); no state is
// mutated before one is returned.
type OpError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *OpError) Error() string { return e.Message }

var (
	ErrInvalidRoom      = &OpError{Code: "invalid-room", Message: "invalid room id"}
	ErrPasswordRequired = &OpError{Code: "password-required", Message: "room is private, a correct password is required to join"}
	ErrAlreadyInRoom    = &OpError{Code: "already-in-room", Message: "account already joined this room"}
	ErrRoomMissing      = &OpError{Code: "room-missing", Message: "room missing"}
	ErrRoomNotFound     = &OpError{Code: "room-not-found", Message: "room not found"}
	ErrMissingURL       = &OpError{Code: "missing-url", Message: "missing url"}
	ErrMissingTracks    = &OpError{Code: "missing-tracks", Message: "missing tracks"}
	ErrNoValidTracks    = &OpError{Code: "no-valid-tracks", Message: "no valid tracks"}
	ErrTrackNotFound    = &OpError{Code: "not-found", Message: "track not found"}
	ErrInvalidIndex     = &OpError{Code: "invalid-index", Message: "invalid index"}
	ErrEmptyPlaylist    = &OpError{Code: "empty", Message: "playlist is empty"}
	ErrInvalidMode      = &OpError{Code: "invalid-mode", Message: "invalid play mode"}
)
