package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tpodash/pkg/contracts/domain"
)

func TestBucketFor(t *testing.T) {
	tests := []struct {
		name string
		gpa  *float64
		want Bucket
	}{
		{"nil", nil, BucketUnresolved},
		{"zero", domain.Float(0), BucketLow},
		{"just below three", domain.Float(2.95), BucketLow},
		{"three", domain.Float(3.00), BucketMid},
		{"just below four", domain.Float(3.99), BucketMid},
		{"four", domain.Float(4.0), BucketHigh},
		{"four point three", domain.Float(4.30), BucketHigh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BucketFor(tt.gpa))
		})
	}
}

func TestParseBucket(t *testing.T) {
	for _, b := range append(Buckets, BucketUnresolved) {
		got, ok := ParseBucket(string(b))
		assert.True(t, ok)
		assert.Equal(t, b, got)

		got, ok = ParseBucket(b.Label())
		assert.True(t, ok)
		assert.Equal(t, b, got)
	}

	_, ok := ParseBucket("excellent")
	assert.False(t, ok)
	_, ok = ParseBucket("")
	assert.False(t, ok)
}

func TestBuildGPAIndex(t *testing.T) {
	idx := BuildGPAIndex([]domain.Row{
		{"학번": "20210001", "평점": "3.2"},
		{"학번": "20210001", "평점": "3.6"},
		{"학번": "20210002", "평점": ""},
		{"학번": "", "평점": "4.0"},
		{"학번": "20220003", "평점": 4.3},
	})

	require.Len(t, idx, 3)
	gpa, ok := idx.Lookup("20210001")
	require.True(t, ok)
	assert.InDelta(t, 3.4, *gpa, 1e-9)

	gpa, ok = idx.Lookup("20210002")
	assert.True(t, ok)
	assert.Nil(t, gpa)

	_, ok = idx.Lookup("missing")
	assert.False(t, ok)

	assert.Equal(t, BucketMid, idx.Bucket("20210001"))
	assert.Equal(t, BucketUnresolved, idx.Bucket("20210002"))
	assert.Equal(t, BucketHigh, idx.Bucket("20220003"))
	assert.Equal(t, BucketUnresolved, idx.Bucket("missing"))
}

func TestBuildGPAIndex_NoGPAColumn(t *testing.T) {
	idx := BuildGPAIndex([]domain.Row{{"Student ID": "1", "note": "x"}})
	gpa, ok := idx.Lookup("1")
	assert.True(t, ok)
	assert.Nil(t, gpa)

	assert.Empty(t, BuildGPAIndex(nil))
}
