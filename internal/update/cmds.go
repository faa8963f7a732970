package update

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/lsqtable/internal/macro"
	"github.com/sandeepkv93/lsqtable/internal/mutation"
	"github.com/sandeepkv93/lsqtable/internal/scheduler"
)

const pageCreatedRefreshID = "page-created"

func fetchRowsCmd(f Fetcher, gen uint64, text string, timeout time.Duration) tea.Cmd {
	if f == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		res, err := f.Run(ctx, text)
		return RowsLoadedMsg{Generation: gen, Result: res, Err: err}
	}
}

func applyMutationCmd(c *mutation.Coordinator, mut mutation.Mutation, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return MutationDoneMsg{Mutation: mut, Err: c.Apply(ctx, mut)}
	}
}

func createPageCmd(c *mutation.Coordinator, name, filterText string, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		page, err := c.CreatePage(ctx, name, filterText)
		return PageCreatedMsg{Name: name, Page: page, Err: err}
	}
}

func storeQueryCmd(host macro.Host, blockUUID, text string, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		changed, err := macro.UpdateQuery(ctx, host, blockUUID, text)
		return QueryStoredMsg{Query: text, Changed: changed, Err: err}
	}
}

func loadViewStateCmd(vs ViewState, blockUUID string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		return ViewStateLoadedMsg{
			Hidden:  vs.HiddenColumns(ctx, blockUUID),
			Columns: vs.ColumnOrder(ctx, blockUUID),
			Sort:    vs.Sort(ctx, blockUUID),
		}
	}
}

// delayedRefreshCmd schedules a refetch after delay, through the scheduler
// when there is one.
func delayedRefreshCmd(engine *scheduler.Engine, delay time.Duration) tea.Cmd {
	if engine != nil {
		if err := engine.After(pageCreatedRefreshID, scheduler.ReasonPageCreated, delay); err == nil {
			return nil
		}
	}
	return tea.Tick(delay, func(at time.Time) tea.Msg {
		return RefreshDueMsg{Event: scheduler.RefreshEvent{ID: pageCreatedRefreshID, Reason: scheduler.ReasonPageCreated, TriggerAt: at}}
	})
}

func waitForRefreshCmd(ch <-chan scheduler.RefreshEvent) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return RefreshDueMsg{Event: ev, viaEngine: true}
	}
}
