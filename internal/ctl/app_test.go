package ctl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/flashdeck/internal/common"
	"github.com/dmitrijs2005/flashdeck/internal/logging"
	"github.com/dmitrijs2005/flashdeck/internal/server/config"
	"github.com/dmitrijs2005/flashdeck/internal/server/models"
	"github.com/dmitrijs2005/flashdeck/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/flashdeck/internal/server/services"
)

func newTestApp(t *testing.T) (*App, *bytes.Buffer, repomanager.RepositoryManager) {
	t.Helper()

	rm, err := repomanager.OpenBadger("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = rm.Close() })

	log := logging.Nop{}
	out := &bytes.Buffer{}
	images := services.NewImageService(&config.Config{})
	return NewApp(services.NewMaintenanceService(rm, services.NewCoordinator(rm, log), log), images, out), out, rm
}

func TestRun_Usage(t *testing.T) {
	a, _, _ := newTestApp(t)

	err := a.Run(context.Background(), nil)
	assert.ErrorContains(t, err, "usage")

	err = a.Run(context.Background(), []string{"-storage", "badger", "frobnicate"})
	assert.ErrorContains(t, err, `unknown command "frobnicate"`)
}

func TestRun_Help(t *testing.T) {
	a, out, _ := newTestApp(t)
	require.NoError(t, a.Run(context.Background(), []string{"help"}))
	assert.Contains(t, out.String(), "reconcile")
}

func TestRun_SeedTwice(t *testing.T) {
	a, out, _ := newTestApp(t)
	ctx := context.Background()

	require.NoError(t, a.Run(ctx, []string{"-storage", "badger", "seed"}))
	var report services.SeedReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.Len(t, report.Decks, 3)

	out.Reset()
	require.NoError(t, a.Run(ctx, []string{"seed"}))
	assert.Contains(t, out.String(), "already exist")
}

func TestRun_SeedFromFile(t *testing.T) {
	a, _, rm := newTestApp(t)
	a.readFile = func(name string) ([]byte, error) {
		if name != "decks.yaml" {
			return nil, errors.New("unexpected file " + name)
		}
		return []byte("- name: Go\n  cards:\n    - question: q\n      answer: a\n"), nil
	}

	require.NoError(t, a.Run(context.Background(), []string{"seed", "-f", "decks.yaml"}))

	decks, err := rm.Repositories().Decks.ListDefault(context.Background())
	require.NoError(t, err)
	require.Len(t, decks, 1)
	assert.Equal(t, "Go", decks[0].Name)
	assert.Len(t, decks[0].CardIDs, 1)
}

func TestRun_Reconcile(t *testing.T) {
	a, out, rm := newTestApp(t)
	ctx := context.Background()

	deck, err := rm.Repositories().Decks.Create(ctx, &models.Deck{Name: "React", Owner: models.SystemOwned()})
	require.NoError(t, err)
	require.NoError(t, rm.Repositories().Decks.AddCard(ctx, deck.ID, "ghost"))

	require.NoError(t, a.Run(ctx, []string{"reconcile", "-dry-run"}))
	var report services.ReconcileReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.Len(t, report.DanglingLinks, 1)
	assert.False(t, report.Repaired)

	out.Reset()
	require.NoError(t, a.Run(ctx, []string{"reconcile"}))
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.True(t, report.Repaired)

	got, err := rm.Repositories().Decks.GetByID(ctx, deck.ID)
	require.NoError(t, err)
	assert.Empty(t, got.CardIDs)
}

type fakeUploader struct {
	url  string
	user string
}

func (f *fakeUploader) UploadURL(_ context.Context, userID string) (string, string, error) {
	f.user = userID
	return "flashcards/" + userID + "/img", f.url, nil
}

func TestRun_UploadImage(t *testing.T) {
	var got []byte
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = io.ReadAll(r.Body)
	}))
	defer ts.Close()

	a, out, _ := newTestApp(t)
	up := &fakeUploader{url: ts.URL}
	a.images = up
	a.httpClient = ts.Client()
	a.readFile = func(string) ([]byte, error) { return []byte("image-bytes"), nil }

	require.NoError(t, a.Run(context.Background(), []string{"upload-image", "-user", "u1", "pic.png"}))
	assert.Equal(t, "image-bytes", string(got))
	assert.Equal(t, "u1", up.user)

	var res map[string]string
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	assert.Equal(t, "flashcards/u1/img", res["key"])
}

func TestRun_UploadImage_Errors(t *testing.T) {
	a, _, _ := newTestApp(t)
	a.readFile = func(string) ([]byte, error) { return []byte("x"), nil }

	err := a.Run(context.Background(), []string{"upload-image"})
	assert.ErrorContains(t, err, "needs a file")

	err = a.Run(context.Background(), []string{"upload-image", "pic.png"})
	assert.ErrorIs(t, err, common.ErrorUnavailable)
}
