// Package api exposes a Store over HTTP.
//
// The router is built with [github.com/go-chi/chi/v5]. Every response is
// JSON except the render endpoints. Errors carry the code from
// [github.com/matzehuels/panels/pkg/errors] and map to a status with
// errors.HTTPStatus:
//
//	{"error": {"code": "PANEL_NOT_FOUND", "message": "panel p9 not found"}}
//
// Routes:
//
//	GET    /healthz
//	GET    /state
//	GET    /panels                  POST /panels
//	GET    /panels/{id}             PATCH /panels/{id}     DELETE /panels/{id}
//	POST   /panels/{id}/select      POST /panels/{id}/duplicate
//	POST   /panels/{id}/center
//	DELETE /selection
//	POST   /history/undo            POST /history/redo
//	POST   /keys
//	GET    /grid                    PUT /grid
//	PUT    /viewport
//	GET    /workspaces              POST /workspaces
//	GET    /workspaces/{id}         DELETE /workspaces/{id}
//	POST   /workspaces/{id}/load
//	POST   /resize/proportional     POST /resize/group
//	GET    /resize/queue
//	GET    /render/svg              GET /render/dot
//	GET    /render/preview          GET /render/adjacency
//
// Resize requests are planned immediately and applied by the resize queue
// on its next frame, so they answer 202 Accepted with the queued
// operations.
package api
