package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSalesVolume(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{"A1250", 1250, true},
		{"b300", 300, true},
		{"C0", 0, true},
		{"1250", 0, false},
		{"A", 0, false},
		{"AB12", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, ok := SalesVolume(tt.raw)
		assert.Equal(t, tt.ok, ok, tt.raw)
		if tt.ok {
			assert.Equal(t, tt.want, got, tt.raw)
		}
	}
}

func TestRangeMidpoint(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{"1.000-2.000 TL", 1500, true},
		{"500-1000", 750, true},
		{"5.000+", 5000, true},
		{"250", 250, true},
		{"yok", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, ok := RangeMidpoint(tt.raw)
		assert.Equal(t, tt.ok, ok, tt.raw)
		if tt.ok {
			assert.Equal(t, tt.want, got, tt.raw)
		}
	}
}

func TestBedCount(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{"100-200", 150, true},
		{"2K", 2000, true},
		{"1K-2K", 1500, true},
		{"5 / 5+", 5, true},
		{"80", 80, true},
		{"Butik Otel", 0, false},
		{"Lüks Butik Otel", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, ok := BedCount(tt.raw)
		assert.Equal(t, tt.ok, ok, tt.raw)
		if tt.ok {
			assert.Equal(t, tt.want, got, tt.raw)
		}
	}
}

func TestMapinSegment(t *testing.T) {
	seg, ok := MapinSegment("R3-B")
	assert.True(t, ok)
	assert.Equal(t, "R", seg.Type)
	assert.True(t, seg.PopValid)
	assert.Equal(t, 3.0, seg.Population) // 6 - 3
	assert.True(t, seg.LuxValid)
	assert.Equal(t, 4.0, seg.Luxury)

	seg, ok = MapinSegment("CK5")
	assert.True(t, ok)
	assert.Equal(t, "CK", seg.Type)
	assert.Equal(t, 1.0, seg.Population)
	assert.False(t, seg.LuxValid)

	_, ok = MapinSegment("7X")
	assert.False(t, ok)
	_, ok = MapinSegment("")
	assert.False(t, ok)
}

func TestBinaryEncode(t *testing.T) {
	mapping := map[string]int{"Hayır": 0, "Evet": 1}

	v, ok := BinaryEncode("Evet", mapping)
	assert.True(t, ok)
	assert.Equal(t, 1.0, v)

	v, ok = BinaryEncode(" Hayır ", mapping)
	assert.True(t, ok)
	assert.Equal(t, 0.0, v)

	_, ok = BinaryEncode("belki", mapping)
	assert.False(t, ok)
}
