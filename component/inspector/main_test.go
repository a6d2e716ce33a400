package inspector

import (
	"testing"

	"github.com/fatih/color"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	// keep log assertions independent of the terminal
	color.NoColor = true

	goleak.VerifyTestMain(m)
}
