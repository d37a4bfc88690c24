package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/h2non/gock.v1"
)

const googleSample = `[[["Bonjour le monde. ","Hello world. ",null,null,10],["Comment ça va ?","How are you?",null,null,10]],null,"en",null,null,null,0.93,[]]`

func TestGoogle_Translate(t *testing.T) {
	defer gock.Off()

	gock.New("https://translate.googleapis.com").
		Post("/translate_a/single").
		MatchParam("client", "gtx").
		MatchParam("sl", "en").
		MatchParam("tl", "fr").
		Reply(200).
		BodyString(googleSample)

	g := NewGoogle(GoogleConfig{}, 0)
	got, err := g.Translate(context.Background(), Request{Text: "Hello world. How are you?", Source: "en", Target: "fr"})
	require.NoError(t, err)
	assert.Equal(t, "Bonjour le monde. Comment ça va ?", got)
	assert.True(t, gock.IsDone())
}

func TestGoogle_Detect(t *testing.T) {
	defer gock.Off()

	gock.New("https://translate.googleapis.com").
		Post("/translate_a/single").
		MatchParam("sl", "auto").
		MatchParam("tl", "en").
		Reply(200).
		BodyString(googleSample)

	g := NewGoogle(GoogleConfig{}, 0)
	d, err := g.Detect(context.Background(), Request{Text: "Hello world."})
	require.NoError(t, err)
	assert.Equal(t, "en", d.Language)
	assert.InDelta(t, 0.93, d.Score, 0.0001)
}

func TestGoogle_StatusError(t *testing.T) {
	defer gock.Off()

	gock.New("https://translate.googleapis.com").
		Post("/translate_a/single").
		Reply(429).
		BodyString("Too Many Requests")

	g := NewGoogle(GoogleConfig{}, 0)
	_, err := g.Translate(context.Background(), Request{Text: "Hello", Source: "en", Target: "fr"})

	var e *Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, 429, e.StatusCode)
	assert.EqualError(t, err, "google: Too Many Requests (status 429)")
}

func TestGoogle_InvalidBody(t *testing.T) {
	defer gock.Off()

	gock.New("https://translate.googleapis.com").
		Post("/translate_a/single").
		Reply(200).
		BodyString("<html>captcha</html>")

	g := NewGoogle(GoogleConfig{}, 0)
	_, err := g.Translate(context.Background(), Request{Text: "Hello", Source: "en", Target: "fr"})
	assert.Error(t, err)
}

func TestGoogle_Languages(t *testing.T) {
	g := NewGoogle(GoogleConfig{}, 0)

	m, err := g.Languages(context.Background())
	require.NoError(t, err)
	assert.Contains(t, m, "yo")
	assert.Contains(t, m["en"], "yo")
	assert.NotContains(t, m["en"], "en")
}
