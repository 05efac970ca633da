package cli

import (
	"context"
	"testing"

	"github.com/alexanderramin/prdchat/internal/domain"
	"github.com/alexanderramin/prdchat/internal/teatest"
)

// TestDriver wraps teatest.Driver with access to appModel internals (view
// stack and shared conversation state) that the generic driver can't see.
type TestDriver struct {
	*teatest.Driver
}

// NewTestDriver builds the chat appModel for app, sets a terminal size and
// drains Init().
func NewTestDriver(t *testing.T, app *App) *TestDriver {
	t.Helper()

	m := newAppModel(context.Background(), app, domain.NewSessionState(app.Config.MergeCollected))
	d := teatest.New(t, m, teatest.WithSize(120, 40))
	d.DrainInit()

	return &TestDriver{Driver: d}
}

func (d *TestDriver) appModel() *appModel {
	return d.Model.(*appModel)
}

// ActiveViewID returns the ViewID of the top view on the stack.
func (d *TestDriver) ActiveViewID() ViewID {
	v := d.appModel().activeView()
	if v == nil {
		return ViewID(-1)
	}
	return v.ID()
}

// ViewStackLen returns the number of views on the stack.
func (d *TestDriver) ViewStackLen() int {
	return len(d.appModel().viewStack)
}

// Shared returns the conversation state the views work on.
func (d *TestDriver) Shared() *SharedState {
	return d.appModel().state
}

// LastEntry returns the newest transcript entry of the active view.
func (d *TestDriver) LastEntry() string {
	switch v := d.appModel().activeView().(type) {
	case *intakeView:
		return v.log.last()
	case *draftView:
		return v.log.last()
	}
	return ""
}

// Busy reports whether the active view is waiting on a model call.
func (d *TestDriver) Busy() bool {
	switch v := d.appModel().activeView().(type) {
	case *intakeView:
		return v.busy
	case *draftView:
		return v.busy
	}
	return false
}
