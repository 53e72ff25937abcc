package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/unicorn-emporium/internal/academy"
	"github.com/terra-clan/unicorn-emporium/internal/api"
	"github.com/terra-clan/unicorn-emporium/internal/catalog"
	"github.com/terra-clan/unicorn-emporium/internal/checkout"
	"github.com/terra-clan/unicorn-emporium/internal/config"
	"github.com/terra-clan/unicorn-emporium/internal/storage"
)

func newBackend(t *testing.T) string {
	t.Helper()

	repo := storage.NewMemoryRepository()
	_, err := catalog.Seed(context.Background(), repo, catalog.SampleProducts())
	require.NoError(t, err)

	srv := api.NewServer(config.ServerConfig{Port: 8080}, repo, academy.NewDefaultLoader(), nil)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts.URL
}

func downBackend() string {
	ts := httptest.NewServer(http.NotFoundHandler())
	ts.Close()
	return ts.URL
}

func newTestApp(t *testing.T, apiURL, stateDir string, input string) *app {
	t.Helper()

	cfg := &config.Config{
		Server:  config.ServerConfig{Port: 8080},
		Storage: config.StorageConfig{Driver: config.StorageMemory},
		Academy: config.AcademyConfig{TotalModules: academy.DefaultTotalModules},
		State:   config.StateConfig{Backend: "file", Dir: stateDir},
		Client:  config.ClientConfig{BaseURL: apiURL, Timeout: 2 * time.Second},
	}

	a := &app{cfg: cfg, in: strings.NewReader(input)}
	t.Cleanup(a.close)
	return a
}

func run(a *app, args ...string) (stdout, stderr string, err error) {
	var out, errOut bytes.Buffer
	root := newRootCmd(a)
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err = root.Execute()
	return out.String(), errOut.String(), err
}

func TestProducts(t *testing.T) {
	a := newTestApp(t, newBackend(t), t.TempDir(), "")

	out, stderr, err := run(a, "products")
	require.NoError(t, err)
	assert.Contains(t, out, "Sparkle Supreme")
	assert.Contains(t, out, "$9,999")
	assert.NotContains(t, stderr, catalog.FallbackAdvisory)

	out, _, err = run(a, "products", "--category", "rare")
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(out, "\n"), "header plus two rare unicorns")

	_, _, err = run(a, "products", "--category", "mythic")
	assert.ErrorContains(t, err, "unknown category")

	out, _, err = run(a, "product", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Celestial Star (#3)")

	_, _, err = run(a, "product", "99")
	assert.ErrorContains(t, err, "not found")
}

func TestProducts_FallbackToSamples(t *testing.T) {
	a := newTestApp(t, downBackend(), t.TempDir(), "")

	out, stderr, err := run(a, "products")
	require.NoError(t, err)
	assert.Contains(t, stderr, catalog.FallbackAdvisory)
	for _, p := range catalog.SampleProducts() {
		assert.Contains(t, out, p.Name)
	}
}

func TestCart(t *testing.T) {
	backend := newBackend(t)
	dir := t.TempDir()
	a := newTestApp(t, backend, dir, "")

	out, _, err := run(a, "cart", "add", "1")
	require.NoError(t, err)
	assert.Equal(t, "Cart: 1 item, $9,999\n", out)

	out, _, err = run(a, "cart", "add", "2", "--qty", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Cart: 4 items, $48,996")

	out, _, err = run(a, "cart", "set", "2", "1")
	require.NoError(t, err)
	assert.Equal(t, "Cart: 2 items, $22,998\n", out)

	out, _, err = run(a, "cart", "remove", "42")
	require.NoError(t, err)
	assert.Empty(t, out, "unknown ids do not change the cart")

	// a fresh process sees the saved cart
	a.close()
	b := newTestApp(t, backend, dir, "")
	out, _, err = run(b, "cart", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Sparkle Supreme")
	assert.Contains(t, out, "Rainbow Dash")
	assert.Contains(t, out, "Total: $22,998")

	out, _, err = run(b, "cart", "clear")
	require.NoError(t, err)
	assert.Equal(t, "Cart: 0 items, $0\n", out)

	out, _, err = run(b, "cart", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Your cart is empty.")
}

func TestCheckout(t *testing.T) {
	a := newTestApp(t, newBackend(t), t.TempDir(), "")
	flags := []string{"--name", "Ada Lovelace", "--email", "ada@example.com", "--address", "1 Rainbow Road"}

	_, _, err := run(a, append([]string{"checkout"}, flags...)...)
	assert.ErrorIs(t, err, errEmptyCart)

	_, _, err = run(a, "cart", "add", "3", "--qty", "2")
	require.NoError(t, err)

	_, _, err = run(a, "checkout", "--name", "Ada", "--email", "not-an-email", "--address", "x")
	assert.ErrorIs(t, err, checkout.ErrInvalidForm)

	out, stderr, err := run(a, append([]string{"checkout", "--delivery", "pegasus"}, flags...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Order number: 1\n")
	assert.NotContains(t, stderr, "did not confirm")
	assert.Empty(t, a.cart.Lines())
	assert.Equal(t, "1", a.cart.OrderNumber())
	assert.False(t, a.cart.Snapshot().SuccessOpen)
}

func TestCheckout_BackendDown(t *testing.T) {
	a := newTestApp(t, downBackend(), t.TempDir(), "")

	_, _, err := run(a, "cart", "add", "5")
	require.NoError(t, err)

	out, stderr, err := run(a, "checkout", "--name", "Ada", "--email", "ada@example.com", "--address", "1 Rainbow Road")
	require.NoError(t, err)
	assert.Contains(t, out, "Thank you!")
	assert.Contains(t, stderr, "did not confirm")
	assert.Len(t, a.cart.OrderNumber(), checkout.OrderIDLength)
	assert.Empty(t, a.cart.Lines())
}

func TestAcademy(t *testing.T) {
	dir := t.TempDir()
	a := newTestApp(t, downBackend(), dir, "")

	out, _, err := run(a, "academy", "complete", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Progress: 10%")

	_, _, err = run(a, "academy", "complete", "11")
	assert.ErrorContains(t, err, "not found")

	out, _, err = run(a, "academy", "show", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Module 2: Data Privacy & Confidentiality")

	a.close()
	b := newTestApp(t, downBackend(), dir, "")
	out, _, err = run(b, "academy", "progress")
	require.NoError(t, err)
	assert.Contains(t, out, "10% (1 of 10 modules)")

	out, _, err = run(b, "academy", "modules")
	require.NoError(t, err)
	assert.Contains(t, out, "Prompt Injection Attacks")
	assert.Equal(t, 1, strings.Count(out, " x "))
}

func answerKey(t *testing.T) []string {
	t.Helper()
	var key []string
	for _, q := range academy.NewDefaultLoader().Questions() {
		key = append(key, strconv.Itoa(q.Correct+1))
	}
	return key
}

func TestQuiz_AnswerSheet(t *testing.T) {
	a := newTestApp(t, downBackend(), t.TempDir(), "")
	key := answerKey(t)

	out, _, err := run(a, "quiz", "--answers", strings.Join(key, ","))
	require.NoError(t, err)
	assert.Contains(t, out, "Score: 100% (20 of 20 correct)")
	assert.Contains(t, out, "Passed!")

	// 15 of 20 is 75%, below the pass mark
	for i := 0; i < 5; i++ {
		key[i] = "0"
	}
	out, _, err = run(a, "quiz", "--answers", strings.Join(key, ","))
	require.NoError(t, err)
	assert.Contains(t, out, "Score: 75% (15 of 20 correct)")
	assert.Contains(t, out, "Not passed. 80% is required")

	_, _, err = run(a, "quiz", "--answers", strings.Join(append(key, "1"), ","))
	assert.ErrorContains(t, err, "21 answers given for 20 questions")

	_, _, err = run(a, "quiz", "--answers", "9")
	assert.ErrorContains(t, err, "option index out of range")
}

func TestQuiz_Interactive(t *testing.T) {
	key := answerKey(t)
	input := "banana\n" + strings.Join(key, "\n") + "\n"
	a := newTestApp(t, downBackend(), t.TempDir(), input)

	out, _, err := run(a, "quiz")
	require.NoError(t, err)
	assert.Contains(t, out, "Question 1 of 20")
	assert.Contains(t, out, "Please enter one of the option numbers.")
	assert.Contains(t, out, "Score: 100%")

	// input ends early, the remaining questions count as wrong
	b := newTestApp(t, downBackend(), t.TempDir(), strings.Join(key[:10], "\n"))
	out, _, err = run(b, "quiz")
	require.NoError(t, err)
	assert.Contains(t, out, "Score: 50% (10 of 20 correct)")
}

func writeContent(t *testing.T, modules int) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "modules"), 0o755))
	for i := 1; i <= modules; i++ {
		doc := fmt.Sprintf("id: %d\ntitle: Module %d\n", i, i)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "modules", fmt.Sprintf("%02d.yaml", i)), []byte(doc), 0o644))
	}
	quizDoc := "questions:\n  - question: Q?\n    options: [a, b]\n    correct: 0\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "quiz.yaml"), []byte(quizDoc), 0o644))
	return dir
}

func TestAcademy_TotalFollowsLoadedContent(t *testing.T) {
	a := newTestApp(t, downBackend(), t.TempDir(), "")
	a.cfg.Academy.ContentDir = writeContent(t, 6)
	a.cfg.Academy.TotalModules = 0

	out, _, err := run(a, "academy", "complete", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Progress: 17%")

	for _, id := range []string{"2", "3", "4", "5", "6"} {
		_, _, err = run(a, "academy", "complete", id)
		require.NoError(t, err)
	}
	out, _, err = run(a, "academy", "progress")
	require.NoError(t, err)
	assert.Contains(t, out, "100% (6 of 6 modules)")
}

func TestAcademy_ConfiguredTotalWins(t *testing.T) {
	a := newTestApp(t, downBackend(), t.TempDir(), "")
	a.cfg.Academy.ContentDir = writeContent(t, 6)

	_, stderr, err := run(a, "academy", "complete", "1")
	require.NoError(t, err)
	assert.Contains(t, stderr, "academy module total differs from loaded content")
	assert.Equal(t, 10, a.tracker.Total())
}

func TestState(t *testing.T) {
	dir := t.TempDir()
	a := newTestApp(t, downBackend(), dir, "")

	_, _, err := run(a, "cart", "add", "1")
	require.NoError(t, err)
	_, _, err = run(a, "academy", "complete", "3")
	require.NoError(t, err)

	out, _, err := run(a, "state", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Backend:  file")
	assert.Contains(t, out, filepath.Join(dir, "state.json"))
	assert.Contains(t, out, "Cart: 1 item, $9,999")
	assert.Contains(t, out, "Academy:  1 of 10 modules")

	_, _, err = run(a, "state", "reset")
	assert.ErrorContains(t, err, "pass --yes to confirm")

	out, _, err = run(a, "state", "reset", "--yes")
	require.NoError(t, err)
	assert.Equal(t, "Removed 2 saved entries.\n", out)
	assert.Empty(t, a.cart.Lines())
	assert.Zero(t, a.tracker.Count())

	// nothing comes back on the next run
	a.close()
	b := newTestApp(t, downBackend(), dir, "")
	out, _, err = run(b, "cart", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Your cart is empty.")
	out, _, err = run(b, "academy", "progress")
	require.NoError(t, err)
	assert.Contains(t, out, "0% (0 of 10 modules)")
}
