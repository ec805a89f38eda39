package screening

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerms_Defaults(t *testing.T) {
	s, _ := newTestStore(t)

	assert.Equal(t, DefaultConfig().DefaultTerms, s.Terms())
	assert.Empty(t, s.CustomTerms())
	assert.Empty(t, s.LastRunTerms())
}

func TestAddTerm(t *testing.T) {
	s, _ := newTestStore(t)

	terms, err := s.AddTerm("  Bankruptcy ")
	require.NoError(t, err)
	assert.Equal(t, "Bankruptcy", terms[len(terms)-1])

	_, err = s.AddTerm("BANKRUPTCY")
	require.NoError(t, err)
	_, err = s.AddTerm("fraud")
	require.NoError(t, err)
	assert.Equal(t, []string{"Bankruptcy"}, s.CustomTerms())

	_, err = s.AddTerm("   ")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRemoveTerm(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.AddTerm("Bankruptcy")
	require.NoError(t, err)
	_, err = s.AddTerm("Tax Lien")
	require.NoError(t, err)

	terms, err := s.RemoveTerm("Bankruptcy")
	require.NoError(t, err)
	assert.NotContains(t, terms, "Bankruptcy")
	assert.Equal(t, []string{"Tax Lien"}, s.CustomTerms())

	_, err = s.RemoveTerm("Fraud")
	assert.ErrorIs(t, err, ErrNotFound)
}
