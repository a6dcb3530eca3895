package standalone

import (
	"log"

	"github.com/sqweek/dialog"

	"github.com/SeanRamey/86Box/video"
)

// promptText holds the message for each one-time prompt.
var promptText = map[string]string{
	video.PromptFullscreenFirst: "The emulator is entering fullscreen mode.\n\n" +
		"Press F11 to return to windowed mode.\n\n" +
		"Do not show this message again?",
}

// dialogConfirmer shows one-time prompts as native message boxes. The box
// is modal and blocks the Ebiten goroutine until answered.
type dialogConfirmer struct {
	title string
	ask   func(title, msg string) bool
}

func newDialogConfirmer(title string) *dialogConfirmer {
	return &dialogConfirmer{title: title, ask: askYesNo}
}

func askYesNo(title, msg string) bool {
	return dialog.Message("%s", msg).Title(title).YesNo()
}

// ConfirmOnce implements video.Confirmer. Returns true when the user asks
// not to be prompted again.
func (c *dialogConfirmer) ConfirmOnce(promptID string) bool {
	msg, ok := promptText[promptID]
	if !ok {
		log.Printf("Warning: no text for prompt %q", promptID)
		return false
	}
	return c.ask(c.title, msg)
}
