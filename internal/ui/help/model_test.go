package help

import (
	"strings"
	"testing"

	"github.com/nhle/simpletasks/internal/keys"
)

func TestViewListsEverySection(t *testing.T) {
	t.Parallel()

	out := New(keys.DefaultKeyMap(), 120, 40).View()
	for _, want := range []string{"Keyboard Shortcuts", "Tasks", "Sign in", "General", "refresh", "ctrl+c"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in help overlay:\n%s", want, out)
		}
	}
}
