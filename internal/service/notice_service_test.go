package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNoticeServiceLifecycle(t *testing.T) {
	svc := NewNoticeService(setupTestStorage(t, 0))
	svc.now = func() time.Time { return time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC) }

	_, err := svc.Create(NoticeInput{Title: " ", Content: "x"})
	require.ErrorIs(t, err, ErrNoticeInvalidInput)

	published, err := svc.Create(NoticeInput{Title: "전시 안내", Content: "5월 전시가 열립니다."})
	require.NoError(t, err)
	require.True(t, published.Published)
	require.Equal(t, "2025.05.01", published.Date)

	hidden := false
	draft, err := svc.Create(NoticeInput{Title: "초안", Content: "준비 중", Date: "2025.06.01", Published: &hidden})
	require.NoError(t, err)

	public, err := svc.List(false)
	require.NoError(t, err)
	require.Len(t, public, 1)
	require.Equal(t, published.ID, public[0].ID)

	all, err := svc.List(true)
	require.NoError(t, err)
	require.Len(t, all, 2)

	show := true
	updated, err := svc.Update(draft.ID, NoticeInput{Title: "공개", Content: "이제 공개", Published: &show})
	require.NoError(t, err)
	require.True(t, updated.Published)

	public, err = svc.List(false)
	require.NoError(t, err)
	require.Len(t, public, 2)

	require.NoError(t, svc.Delete(published.ID))
	require.ErrorIs(t, svc.Delete(published.ID), ErrNoticeNotFound)

	_, err = svc.Get(published.ID)
	require.ErrorIs(t, err, ErrNoticeNotFound)

	_, err = svc.Update(9999, NoticeInput{Title: "x", Content: "y"})
	require.ErrorIs(t, err, ErrNoticeNotFound)
}
