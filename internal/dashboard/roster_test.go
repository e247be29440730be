package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/case-dashboard/internal/domain"
)

func TestNewClinicianRoster(t *testing.T) {
	roster := NewClinicianRoster(sampleDataset())

	assert.Equal(t, []string{"ALL", "dr.perez", "dr.ruiz", "dra.gomez"}, roster.Entries())
	assert.Equal(t, 4, roster.Len())
}

func TestNewClinicianRoster_EmptyDataset(t *testing.T) {
	roster := NewClinicianRoster(domain.NewDataset(nil))

	assert.Equal(t, []string{domain.AllClinicians}, roster.Entries())
}

func TestClinicianRoster_At(t *testing.T) {
	roster := NewClinicianRoster(sampleDataset())

	first, err := roster.At(0)
	require.NoError(t, err)
	assert.Equal(t, domain.AllClinicians, first)

	_, err = roster.At(4)
	var rangeErr *domain.OutOfRangeError
	require.ErrorAs(t, err, &rangeErr)
	assert.Equal(t, 4, rangeErr.Index)
	assert.Equal(t, 4, rangeErr.Len)

	_, err = roster.At(-1)
	assert.ErrorAs(t, err, &rangeErr)
}

func TestClinicianRoster_EntriesIsACopy(t *testing.T) {
	roster := NewClinicianRoster(sampleDataset())

	entries := roster.Entries()
	entries[1] = "tampered"

	id, err := roster.At(1)
	require.NoError(t, err)
	assert.Equal(t, "dr.perez", id)
}
