package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/campusroutine/internal/models"
)

func (a *App) Today(ctx context.Context) error {
	return a.ShowDay(ctx, string(models.DayOf(a.now())))
}

func (a *App) ShowDay(ctx context.Context, name string) error {
	day, err := models.ParseDay(name)
	if err != nil {
		return err
	}
	if day.IsOffDay() {
		printlnFn(fmt.Sprintf("%s is an off day.", day))
		return nil
	}

	items, err := a.routines.Day(ctx, a.user, day)
	if err != nil {
		return err
	}
	printlnFn(renderDay(day, items))
	return nil
}

func (a *App) Week(ctx context.Context) error {
	items, err := a.week.Items(ctx, a.user)
	if err != nil {
		return err
	}
	printlnFn(renderWeek(items))
	return nil
}

func (a *App) Days(ctx context.Context) error {
	days, err := a.routines.ActiveDays(ctx, a.user)
	if err != nil {
		return err
	}
	printlnFn(renderDays(days))
	return nil
}

func (a *App) Slots(ctx context.Context) error {
	slots, err := a.routines.TimeSlots(ctx, a.user)
	if err != nil {
		return err
	}
	printlnFn(renderSlots(slots))
	return nil
}

func (a *App) Sync(ctx context.Context) error {
	res, err := a.sync.Sync(ctx, a.user.Department)
	if err != nil {
		return err
	}
	if res.Deleted || res.Updated {
		a.week.Invalidate()
	}
	switch {
	case res.Deleted:
		printlnFn(fmt.Sprintf("No routine is published for %s any more; local copy removed.", a.user.Department))
	case res.Updated:
		printlnFn(fmt.Sprintf("Routine updated to version %d.", res.Version))
	default:
		printlnFn(fmt.Sprintf("Routine is up to date (version %d).", res.Version))
	}
	return nil
}

func (a *App) Refresh(ctx context.Context) error {
	sch, err := a.routines.Refresh(ctx, a.user)
	if err != nil {
		return err
	}
	a.week.Invalidate()
	printlnFn(fmt.Sprintf("Refreshed %s: %d classes, version %d.", sch.Department, len(sch.Entries), sch.Version))
	return nil
}

func (a *App) Status(ctx context.Context) error {
	st, err := a.sync.Status(ctx, a.user.Department)
	if err != nil {
		return err
	}
	printlnFn(renderStatus(a.Mode(), st, a.stats(), a.now()))
	return nil
}

func (a *App) Maintenance(ctx context.Context) error {
	info, err := a.routines.Maintenance(ctx)
	if err != nil {
		return err
	}
	printlnFn(renderMaintenance(info))
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	printlnFn(renderUser(a.user))
	return nil
}

// Logout drops every cached view of the user. The local snapshot stays so
// the next session starts offline-ready.
func (a *App) Logout(ctx context.Context) error {
	a.routines.Logout(a.user)
	a.week.Invalidate()
	a.logger.Info(ctx, "cached views dropped", "user", a.user.ID)
	printlnFn("Logged out, cached views cleared.")
	return nil
}
