//go:build dspassert

package arena

import "fmt"

const assertEnabled = true

func violation(format string, args ...any) {
	panic(fmt.Sprintf("arena: "+format, args...))
}
