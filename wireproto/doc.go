// Package wireproto is an encoder and decoder of the PostgreSQL v3
// frontend/backend wire protocol, scoped to the messages the extended-query
// flow (Parse/Bind/Describe/Execute/Sync) needs.
//
// The primary types are Frontend and Backend. Frontend buffers and sends
// the messages a client emits and decodes the messages a server sends;
// Backend does the reverse, for a scripted fake server.
// Every message type implements Encode and/or Decode directly so callers can
// also construct and inspect messages without a Frontend/Backend in the loop
// (this is how internal/pgmock drives a scripted fake server).
package wireproto
