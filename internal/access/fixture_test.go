// Reelgate - Movie Streaming Access Control
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelgate

package access

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/reelgate/internal/models"
)

const (
	validTokenAdmin         = "validTokenAdmin"
	validTokenUser          = "validTokenUser"
	validTokenMovieProvider = "validTokenMovieProvider"
	validTokenAdProvider    = "validTokenAdProvider"
	validTokenReviewer      = "validTokenReviewer"
	validTokenNoRole        = "validTokenNoRole"
	validTokenOther         = "validTokenOther"
	roleLookupFailToken     = "roleLookupFailToken"
	orphanToken             = "orphanToken"
	expiredToken            = "expiredToken"
	invalidToken            = "invalidToken"

	userEmail  = "user@mail.com"
	adminEmail = "admin@mail.com"
	otherEmail = "anotherUser@mail.com"
)

// tokenRoles lists the roles each valid fixture token holds.
var tokenRoles = map[string][]models.RoleType{
	validTokenAdmin:         {models.RoleAdministrator},
	validTokenUser:          {models.RoleUser},
	validTokenMovieProvider: {models.RoleMovieProvider},
	validTokenAdProvider:    {models.RoleAdProvider},
	validTokenReviewer:      {models.RoleReviewer},
	validTokenNoRole:        nil,
	validTokenOther:         {models.RoleUser},
}

var (
	enabledMovie  = &models.Movie{ID: 1, Title: "Released", Enabled: true, Clips: []models.Clip{}}
	disabledMovie = &models.Movie{ID: 2, Title: "Unreleased", Enabled: false, Clips: []models.Clip{{ID: 10, Sequence: 1}}}
	clipOne       = &models.ClipData{ClipID: 1, URI: "https://clips.example/1.mp4", ContentType: "video/mp4"}
)

// fixture holds mocks primed with the shared token, role, movie and clip
// fixtures. All primed expectations are optional; tests register the
// calls they require on top.
type fixture struct {
	tokens     *mockTokenValidator
	roles      *mockRoleCatalog
	movies     *mockMovieStore
	clips      *mockClipStore
	ads        *mockAdStore
	activities *mockActivityStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		tokens:     newMockTokenValidator(t),
		roles:      newMockRoleCatalog(t),
		movies:     newMockMovieStore(t),
		clips:      newMockClipStore(t),
		ads:        newMockAdStore(t),
		activities: newMockActivityStore(t),
	}

	for token, held := range tokenRoles {
		f.tokens.On("Validate", mock.Anything, token).Return(true, nil).Maybe()
		set := NewRoleSet(held...)
		for _, rt := range models.AllRoleTypes {
			f.tokens.On("IsInRole", mock.Anything, token, roleOf(rt)).Return(set.Has(rt), nil).Maybe()
		}
	}
	f.tokens.On("Validate", mock.Anything, roleLookupFailToken).Return(true, nil).Maybe()
	f.tokens.On("IsInRole", mock.Anything, roleLookupFailToken, mock.Anything).
		Return(false, fmt.Errorf("%w: signature mismatch", ErrInvalidToken)).Maybe()
	f.tokens.On("Validate", mock.Anything, orphanToken).Return(true, nil).Maybe()
	f.tokens.On("Validate", mock.Anything, expiredToken).Return(false, nil).Maybe()
	f.tokens.On("Validate", mock.Anything, invalidToken).Return(false, fmt.Errorf("%w: malformed", ErrInvalidToken)).Maybe()

	f.tokens.On("UserOf", mock.Anything, validTokenUser).Return(&models.User{Email: userEmail}, nil).Maybe()
	f.tokens.On("UserOf", mock.Anything, validTokenAdmin).Return(&models.User{Email: adminEmail}, nil).Maybe()
	f.tokens.On("UserOf", mock.Anything, orphanToken).Return(nil, fmt.Errorf("%w: unknown subject", ErrInvalidToken)).Maybe()

	f.tokens.On("Authenticate", mock.Anything, userWithEmail(userEmail)).Return(validTokenUser, nil).Maybe()
	f.tokens.On("Authenticate", mock.Anything, userWithEmail(adminEmail)).Return(validTokenAdmin, nil).Maybe()
	f.tokens.On("Authenticate", mock.Anything, userWithEmail(otherEmail)).Return(validTokenOther, nil).Maybe()

	for _, rt := range models.AllRoleTypes {
		f.roles.On("ByType", mock.Anything, rt).Return(&models.Role{ID: rt.ID(), Type: rt}, nil).Maybe()
	}

	f.movies.On("ByID", mock.Anything, int64(1)).Return(enabledMovie, nil).Maybe()
	f.movies.On("ByID", mock.Anything, int64(2)).Return(disabledMovie, nil).Maybe()
	f.movies.On("ByID", mock.Anything, int64(3)).Return(nil, fmt.Errorf("movie 3: %w", ErrMovieNotFound)).Maybe()

	f.clips.On("ByClipID", mock.Anything, int64(1)).Return(clipOne, nil).Maybe()
	f.clips.On("ByClipID", mock.Anything, int64(2)).Return(nil, fmt.Errorf("clip 2: %w", ErrClipNotFound)).Maybe()

	return f
}

func (f *fixture) deps() Deps {
	return Deps{
		Tokens:     f.tokens,
		Roles:      f.roles,
		Movies:     f.movies,
		Clips:      f.clips,
		Ads:        f.ads,
		Activities: f.activities,
	}
}

func (f *fixture) service(t *testing.T) *Service {
	t.Helper()
	svc, err := New(f.deps())
	require.NoError(t, err)
	return svc
}

func roleOf(rt models.RoleType) any {
	return mock.MatchedBy(func(r *models.Role) bool { return r != nil && r.Type == rt })
}

func userWithEmail(email string) any {
	return mock.MatchedBy(func(u *models.User) bool { return u != nil && u.Email == email })
}

func newActivity(movieID, email string) *models.Activity {
	return &models.Activity{
		MovieID:   movieID,
		Position:  1,
		Timestamp: 140,
		User:      &models.User{Email: email},
	}
}
