// Package moderationservice owns dockets, public comments and the moderation
// state machine with its audit log.
//
// Comments move pending -> approved | rejected | flagged, approved <-> flagged
// and flagged -> pending. Rejected is terminal. Permission decisions come from
// an AccessPolicy port wired by the composition root.
package moderationservice
