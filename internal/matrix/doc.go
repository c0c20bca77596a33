// Package matrix provides an HTTP client for the Matrix client-server API,
// limited to what a power level editor needs.
//
// # Overview
//
// Client wraps the few endpoints involved in editing a room's permissions:
//
//   - GET  /_matrix/client/v3/account/whoami
//   - GET  /_matrix/client/v3/directory/room/{alias}
//   - GET  /_matrix/client/v3/rooms/{roomId}/state/m.room.power_levels/
//   - PUT  /_matrix/client/v3/rooms/{roomId}/state/m.room.power_levels/
//
// Room binds a client to one room and implements editor.Room.
//
// # Client Usage
//
//	client, err := matrix.NewClient(matrix.Options{
//		HomeserverURL: "matrix.example.org",
//		AccessToken:   token,
//	})
//	room, err := matrix.OpenRoom(ctx, client, "#lobby:example.org")
//	set, err := room.FetchPermissions(ctx)
//
// A homeserver URL without a scheme is treated as https. Every request
// carries the bearer token, Accept: application/json and a roomperms
// User-Agent, and is bounded by Options.Timeout (10s by default).
//
// # Power Levels
//
// PowerLevels mirrors the event content. Absent fields are nil pointers;
// Permissions resolves them with the defaults homeservers apply:
//
//	ban, kick, redact     50
//	invite                0
//	events_default        0   (send_events)
//	state_default         50  (room name, avatar, topic unless listed in events)
//
// WithPermissions writes back only levels that differ from what the content
// already resolves to. Keys the type does not model are kept verbatim
// across a decode/encode round trip.
//
// # Updates
//
// Room.UpdatePermissions is read-modify-write: it fetches the current
// content, overlays the editable levels and PUTs the result, so changes to
// users or notifications made elsewhere are not clobbered. There is one
// attempt and no retry.
//
// # Error Handling
//
// Non-2xx responses with a Matrix error body become *MatrixError; use
// IsMatrixError(err, ErrCodeForbidden) or errors.As. IsPermanent groups the
// codes no retry can fix (M_UNKNOWN_TOKEN, M_FORBIDDEN); callers stop
// retrying on them. Other failures are wrapped with the operation that
// failed:
//
//   - "execute request: ..." for network errors
//   - "decode response: ..." for malformed JSON
//   - "GET /path returned status 500" for non-Matrix error bodies
package matrix
