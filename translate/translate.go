// Package translate formats user visible messages for the selected locale.
package translate

import (
	"log"
	"sync"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/message"
)

const fallbackLocale = "en-US"

var (
	once    sync.Once
	printer *message.Printer
)

func newPrinter(locales []string) *message.Printer {
	if len(locales) == 0 {
		locales = []string{fallbackLocale}
	}

	return message.NewPrinter(message.MatchLanguage(locales...))
}

// current returns the printer, selecting the system locale on first use.
func current() *message.Printer {
	once.Do(func() {
		locales, err := locale.GetLocales()
		if err != nil {
			log.Printf("x86emu: locale: %v", err)
		}
		printer = newPrinter(locales)
	})

	return printer
}

// SetLocale overrides the system locale. An empty list selects en-US.
// Must not be called concurrently with From.
//
// Sentinel errors are translated once, when their packages initialise, so
// they keep the system locale. Only messages formatted after this call,
// such as ErrAddress or ErrSyntax text, follow the override.
func SetLocale(locales ...string) {
	once.Do(func() {})
	printer = newPrinter(locales)
}

// From formats an en-US Sprintf() style key in the selected locale.
func From(key message.Reference, args ...any) string {
	return current().Sprintf(key, args...)
}
