package cmd

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spigell/interview-coach/internal/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptLogin replaces the interactive prompts with canned answers.
func scriptLogin(t *testing.T, actions []string, creds []auth.Credentials, repeats []string) {
	t.Helper()

	oldAction, oldCreds, oldRepeat := askAccountAction, askCredentials, askRepeat
	t.Cleanup(func() {
		askAccountAction, askCredentials, askRepeat = oldAction, oldCreds, oldRepeat
	})

	askAccountAction = func() (string, error) {
		if len(actions) == 0 {
			return "", errExit
		}
		next := actions[0]
		actions = actions[1:]
		return next, nil
	}
	askCredentials = func() (auth.Credentials, error) {
		if len(creds) == 0 {
			return auth.Credentials{}, errExit
		}
		next := creds[0]
		creds = creds[1:]
		return next, nil
	}
	askRepeat = func() (string, error) {
		if len(repeats) == 0 {
			return "", errExit
		}
		next := repeats[0]
		repeats = repeats[1:]
		return next, nil
	}
}

func usersFileWith(t *testing.T, email, password string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.yaml")
	store, err := auth.Open(path)
	require.NoError(t, err)
	_, err = store.Register(auth.Credentials{Email: email, Password: password})
	require.NoError(t, err)
	require.NoError(t, store.Save())
	return path
}

func TestLoginRetriesAfterWrongPassword(t *testing.T) {
	path := usersFileWith(t, "ada@example.com", "correct horse")
	scriptLogin(t,
		[]string{PromptLogin, PromptLogin},
		[]auth.Credentials{
			{Email: "ada@example.com", Password: "wrong password"},
			{Email: "ada@example.com", Password: "correct horse"},
		},
		nil,
	)

	var out bytes.Buffer
	identity, err := login(path, &out)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", identity.Email)
	assert.Equal(t, 1, strings.Count(out.String(), "Login failed: invalid email or password"))
}

func TestLoginSignUpRetriesRejectedAttempts(t *testing.T) {
	path := usersFileWith(t, "ada@example.com", "correct horse")
	scriptLogin(t,
		[]string{PromptSignUp, PromptSignUp, PromptSignUp, PromptSignUp},
		[]auth.Credentials{
			{Email: "grace@example.com", Password: "long enough"},
			{Email: "ada@example.com", Password: "correct horse"},
			{Email: "grace@example.com", Password: "short"},
			{Email: "grace@example.com", Password: "long enough"},
		},
		[]string{"different", "correct horse", "short", "long enough"},
	)

	var out bytes.Buffer
	identity, err := login(path, &out)
	require.NoError(t, err)
	assert.Equal(t, "grace@example.com", identity.Email)
	assert.Equal(t, 3, strings.Count(out.String(), "Login failed:"))
	assert.Contains(t, out.String(), "passwords do not match")
	assert.Contains(t, out.String(), "user already exists")

	store, err := auth.Open(path)
	require.NoError(t, err)
	assert.Equal(t, 2, store.Len())
}

func TestLoginQuit(t *testing.T) {
	path := usersFileWith(t, "ada@example.com", "correct horse")
	scriptLogin(t,
		[]string{PromptLogin, PromptQuit},
		[]auth.Credentials{{Email: "ada@example.com", Password: "nope nope"}},
		nil,
	)

	var out bytes.Buffer
	_, err := login(path, &out)
	assert.True(t, errors.Is(err, errExit))
	assert.Contains(t, out.String(), "Login failed")
}

func TestLoginFirstUserSignsUp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.yaml")
	scriptLogin(t,
		nil,
		[]auth.Credentials{{Email: "ada@example.com", Password: "correct horse"}},
		[]string{"correct horse"},
	)

	identity, err := login(path, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", identity.Email)
}
