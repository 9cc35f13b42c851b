package display

import (
	"fmt"
	"os"

	"github.com/backmassage/steadycrop/internal/logging"
)

// PrintBanner prints the ASCII art banner; uses Magenta if colors are enabled.
func PrintBanner() {
	if logging.Magenta != "" {
		fmt.Fprint(os.Stdout, "\033[1;95m")
	}
	fmt.Fprint(os.Stdout, ` ____  _                 _        ____
/ ___|| |_ ___  __ _  __| |_   _ / ___|_ __ ___  _ __
\___ \| __/ _ \/ _` + "`" + ` |/ _` + "`" + ` | | | | |   | '__/ _ \| '_ \
 ___) | ||  __/ (_| | (_| | |_| | |___| | | (_) | |_) |
|____/ \__\___|\__,_|\__,_|\__, |\____|_|  \___/| .__/
                           |___/                |_|
`)
	if logging.Magenta != "" {
		fmt.Fprintln(os.Stdout, logging.NC)
	}
}
