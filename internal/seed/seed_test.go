package seed

import (
	"context"
	"testing"

	"github.com/campuslink/matchengine/internal/adapters/repository"
)

func TestDemoPopulatesStore(t *testing.T) {
	src := repository.NewMemorySourceStore()
	ctx := context.Background()

	sum := Demo(src)
	if sum.Students != 5 || sum.Listings != 5 || sum.Seasons != 3 || sum.Schedules != 4 {
		t.Fatalf("unexpected summary: %+v", sum)
	}

	students, err := src.Students(ctx)
	if err != nil {
		t.Fatalf("students: %v", err)
	}
	if len(students) != sum.Students {
		t.Errorf("expected %d students, got %d", sum.Students, len(students))
	}

	open, err := src.OpenListings(ctx)
	if err != nil {
		t.Fatalf("open listings: %v", err)
	}
	if len(open) != 4 {
		t.Errorf("expected 4 open listings, got %d", len(open))
	}

	entries, err := src.SchedulesByStudent(ctx, "stu-amara")
	if err != nil {
		t.Fatalf("schedules: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected 1 schedule for stu-amara, got %d", len(entries))
	}
}

func TestDemoIsIdempotent(t *testing.T) {
	src := repository.NewMemorySourceStore()
	ctx := context.Background()

	Demo(src)
	Demo(src)

	students, err := src.Students(ctx)
	if err != nil {
		t.Fatalf("students: %v", err)
	}
	if len(students) != 5 {
		t.Errorf("expected 5 students after double seed, got %d", len(students))
	}

	entries, err := src.SchedulesByStudent(ctx, "stu-mei")
	if err != nil {
		t.Fatalf("schedules: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected 1 schedule after double seed, got %d", len(entries))
	}
}
