//go:build !unix

package speech

import (
	"os"

	contextutils "github.com/Prachi290-pr/language-translator/internal/utils"
)

func suspendProcess(_ *os.Process) error {
	return contextutils.Derive(contextutils.ErrUnsupportedCapability, "pausing speech is not supported on this platform", nil)
}

func continueProcess(_ *os.Process) error {
	return contextutils.Derive(contextutils.ErrUnsupportedCapability, "resuming speech is not supported on this platform", nil)
}
