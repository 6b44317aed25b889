//go:build cgo

package driver

import "github.com/go-fmb/fmb/internal/enumerate"

func newSmtStrategy() enumerate.Strategy {
	return enumerate.NewSmtStrategy()
}
