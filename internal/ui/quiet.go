package ui

import "github.com/bamsammich/dcp/internal/event"

// quietPresenter prints nothing but errors.
type quietPresenter struct {
	errs *ErrorPrinter
}

func (p *quietPresenter) Run(events <-chan event.Event) error {
	for ev := range events {
		if ev.Type == event.Flush {
			close(ev.Ack)
			continue
		}
		if ev.Error != nil {
			p.errs.Entry(ev.Path, ev.Error)
		}
	}
	return nil
}

func (p *quietPresenter) Summary() string {
	return ""
}
