// Package engine is the HTTP client for a local VOICEVOX-compatible speech
// synthesis engine. It exposes the audio_query, audio_query_from_preset,
// presets and synthesis endpoints and maps every failure, including transport
// failures, to a *RemoteError.
package engine
