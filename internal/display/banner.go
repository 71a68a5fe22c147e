package display

import (
	"fmt"
	"os"

	"github.com/backmassage/rapidbatch/internal/term"
)

const banner = `                _     _ _           _       _
 _ __ __ _ _ __ (_) __| | |__   __ _| |_ ___| |__
| '__/ _` + "`" + ` | '_ \| |/ _` + "`" + ` | '_ \ / _` + "`" + ` | __/ __| '_ \
| | | (_| | |_) | | (_| | |_) | (_| | || (__| | | |
|_|  \__,_| .__/|_|\__,_|_.__/ \__,_|\__\___|_| |_|
          |_|`

// PrintBanner prints the ASCII art banner in the title style.
func PrintBanner() {
	fmt.Fprintln(os.Stdout, term.Title.Render(banner))
}
