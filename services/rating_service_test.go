package services

import (
	"math"
	"testing"
)

func TestNextRating(t *testing.T) {
	tests := []struct {
		name      string
		avg       float64
		count     int
		rating    int
		wantAvg   float64
		wantCount int
	}{
		{"first rating", 0, 0, 4, 4.0, 1},
		{"first five stars", 0, 0, 5, 5.0, 1},
		{"established average barely moves", 4.6, 92, 5, 4.6, 93},
		{"small sample shifts", 4.0, 1, 5, 4.5, 2},
		{"rounds half up", 4.0, 3, 5, 4.3, 4}, // 17/4 = 4.25
		{"low rating pulls down", 4.8, 4, 1, 4.0, 5},
		{"one star streak", 1.0, 9, 1, 1.0, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotAvg, gotCount := NextRating(tt.avg, tt.count, tt.rating)
			if math.Abs(gotAvg-tt.wantAvg) > 1e-9 {
				t.Errorf("NextRating(%v, %d, %d) avg = %v, want %v", tt.avg, tt.count, tt.rating, gotAvg, tt.wantAvg)
			}
			if gotCount != tt.wantCount {
				t.Errorf("NextRating(%v, %d, %d) count = %d, want %d", tt.avg, tt.count, tt.rating, gotCount, tt.wantCount)
			}
		})
	}
}

func TestNextRatingStaysInRange(t *testing.T) {
	avg, count := 0.0, 0
	ratings := []int{5, 1, 3, 4, 2, 5, 5, 1, 4, 3}
	for _, r := range ratings {
		avg, count = NextRating(avg, count, r)
		if avg < 1.0 || avg > 5.0 {
			t.Fatalf("average %v left the 1..5 range after %d ratings", avg, count)
		}
	}
	if count != len(ratings) {
		t.Fatalf("count = %d, want %d", count, len(ratings))
	}
}
