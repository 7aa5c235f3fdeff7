// Package voice holds the speech boundary. The conversational loop only
// needs "one utterance in, one utterance out"; everything about audio
// engines lives behind these two interfaces.
package voice

import "context"

// STT captures one utterance of user input as text. A provider blocks
// until input is available or the context ends; an empty string with a
// nil error means "nothing worth processing" and the loop just listens
// again.
type STT interface {
	Listen(ctx context.Context) (string, error)
}

// TTS speaks one utterance. Speak returns once the utterance has been
// handed to the output device.
type TTS interface {
	Speak(ctx context.Context, text string) error
}

// Provider bundles both directions, which is how every backend here ships.
type Provider interface {
	STT
	TTS
}
