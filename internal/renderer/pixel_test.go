package renderer

import (
	"math"
	"testing"
)

func TestUpdateSSAACoordinatesFourSamples(t *testing.T) {
	tp := NewTaskedPixel(0, 10, 20, 0, 1, 4)
	updateSSAACoordinates(&tp)

	want := [][2]float64{
		{9.75, 19.75}, {10.25, 19.75}, {9.75, 20.25}, {10.25, 20.25},
	}
	for i, w := range want {
		if tp.U[i] != w[0] || tp.V[i] != w[1] {
			t.Errorf("sample %d = (%v,%v), want (%v,%v)", i, tp.U[i], tp.V[i], w[0], w[1])
		}
	}
}

func TestUpdateSSAACoordinatesSixteenSamples(t *testing.T) {
	tp := NewTaskedPixel(0, 0, 0, 0, 1, 16)
	updateSSAACoordinates(&tp)

	if tp.U[0] != -0.375 || tp.V[0] != -0.375 {
		t.Errorf("first sample = (%v,%v), want (-0.375,-0.375)", tp.U[0], tp.V[0])
	}
	if tp.U[15] != 0.375 || tp.V[15] != 0.375 {
		t.Errorf("last sample = (%v,%v), want (0.375,0.375)", tp.U[15], tp.V[15])
	}
}

func TestRenderedPixelMeanDistanceZeroInitialised(t *testing.T) {
	rp := NewRenderedPixel(0)
	rp.AddSample(PixelData{T: math.Inf(1)})
	rp.AddSample(PixelData{T: math.Inf(1)})

	if got := rp.MeanDistance(); got != 0 {
		t.Errorf("all-miss MeanDistance = %v, want 0", got)
	}
}

func TestRenderedPixelMeanDistanceAveragesHits(t *testing.T) {
	rp := NewRenderedPixel(0)
	rp.AddSample(PixelData{T: 10})
	rp.AddSample(PixelData{T: 20})
	rp.AddSample(PixelData{T: math.Inf(1)})

	if got := rp.MeanDistance(); got != 10 {
		t.Errorf("MeanDistance = %v, want 10", got)
	}
}

func TestRenderedPixelHit(t *testing.T) {
	miss := NewRenderedPixel(0)
	miss.AddSample(PixelData{T: math.Inf(1)})
	if miss.Hit() {
		t.Error("all-miss pixel reported Hit")
	}

	hit := NewRenderedPixel(1)
	hit.AddSample(PixelData{T: 5})
	if !hit.Hit() {
		t.Error("pixel with finite centre t reported no Hit")
	}
}
