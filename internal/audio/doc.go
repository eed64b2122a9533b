// Package audio plays popup open and close sound cues.
// It uses the beep library to play WAV, OGG, and MP3 audio files
// with volume control and per-popup sound configuration.
package audio
