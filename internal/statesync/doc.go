// Package statesync keeps a display in step with the agent's state by
// long-polling its state endpoint.
//
// # Loop
//
// The Syncer owns a single cursor and runs one request at a time:
//
//  1. Waiting: Fetch(cursor) is in flight; the agent holds it open until its
//     state moves past cursor (or its own timeout fires).
//  2. Rendering: the response is parsed into a state.Snapshot and handed to
//     the Renderer in two passes, daemon/activities first, test detail second.
//  3. The snapshot's cursor becomes the next request's cursor and the loop
//     goes back to Waiting.
//
// There is no timer. Cadence is entirely set by the agent. Because each
// request is issued from the completion of the previous one, responses are
// rendered strictly in request order and the cursor only moves forward.
//
// # Failures
//
// Missing fields never stop the loop; the parser substitutes defaults. A
// failed request or a document that is not well-formed XML leaves the
// cursor untouched and is retried with exponential backoff (see
// RetryPolicy). A request that outlives the client-side timeout is simply
// re-issued. Only cancelling the context passed to Run ends the loop.
package statesync
