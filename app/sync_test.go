package app

import (
	"context"
	"errors"
	"testing"

	"github.com/CrestNiraj12/mastosql/domain"
	"github.com/CrestNiraj12/mastosql/infra/session"
)

type memSink struct {
	home    []HomeRow
	owner   string
	account []AccountRow
	err     error
}

func (m *memSink) UpsertHome(_ context.Context, rows []HomeRow) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.home = append(m.home, rows...)
	return len(rows), nil
}

func (m *memSink) UpsertAccount(_ context.Context, id string, rows []AccountRow) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.owner = id
	m.account = append(m.account, rows...)
	return len(rows), nil
}

func TestConnector_Sync(t *testing.T) {
	statuses := []domain.Status{
		{ID: "1", Reblog: &domain.Reblog{Content: "R1"}},
		{ID: "2", Content: "C2"},
	}
	c := NewConnector(Deps{Store: session.NewStore(), Timeline: fakeTimeline{statuses: statuses}, Logger: discardLogger()})
	sink := &memSink{}

	n, err := c.SyncHome(context.Background(), sink)
	if err != nil || n != 2 {
		t.Fatalf("sync home: n=%d err=%v", n, err)
	}
	if sink.home[0].Type != KindBoost || sink.home[1].Content != "C2" {
		t.Fatalf("unexpected synced rows: %+v", sink.home)
	}

	n, err = c.SyncAccount(context.Background(), sink, "42")
	if err != nil || n != 2 || sink.owner != "42" {
		t.Fatalf("sync account: n=%d owner=%q err=%v", n, sink.owner, err)
	}
}

func TestConnector_SyncErrors(t *testing.T) {
	c := NewConnector(Deps{Store: session.NewStore(), Timeline: fakeTimeline{err: domain.ErrNetwork}, Logger: discardLogger()})
	if _, err := c.SyncHome(context.Background(), &memSink{}); !errors.Is(err, domain.ErrRemoteFetch) {
		t.Fatalf("expected remote fetch error, got %v", err)
	}

	c = NewConnector(Deps{Store: session.NewStore(), Timeline: fakeTimeline{}, Logger: discardLogger()})
	boom := errors.New("disk full")
	if _, err := c.SyncAccount(context.Background(), &memSink{err: boom}, "1"); !errors.Is(err, boom) {
		t.Fatalf("expected sink error, got %v", err)
	}
}
