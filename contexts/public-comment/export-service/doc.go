// Package exportservice runs asynchronous comment exports.
//
// A job is recorded as pending and returned at once. Workers claim pending
// jobs through a bounded pool, render a CSV table or a zip archive, upload the
// artifact and record its retention. Download links are signed per request.
package exportservice
