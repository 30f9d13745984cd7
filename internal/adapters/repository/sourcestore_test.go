package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/campuslink/matchengine/internal/domain/model"
)

func seededSourceStore() *MemorySourceStore {
	src := NewMemorySourceStore()
	src.PutStudent(model.StudentProfile{ID: "s1", FirstName: "Amara", TenantID: "tenant-a"})
	src.PutStudent(model.StudentProfile{ID: "s2", FirstName: "Jonas", TenantID: "tenant-a"})
	src.PutListing(model.Listing{ID: "l1", Title: "Open Gig", Status: model.ListingOpen})
	src.PutListing(model.Listing{ID: "l2", Title: "Closed Gig", Status: model.ListingClosed})
	src.PutSportSeason(model.SportSeason{ID: "sea-1", SportName: "Soccer", StartMonth: 8, EndMonth: 12})
	src.PutSportSeason(model.SportSeason{ID: "sea-2", SportName: "Basketball", StartMonth: 11, EndMonth: 3})
	return src
}

func TestMemorySourceStoreLookups(t *testing.T) {
	src := seededSourceStore()
	ctx := context.Background()

	if _, err := src.Student(ctx, "s1"); err != nil {
		t.Fatalf("student: %v", err)
	}
	if _, err := src.Student(ctx, "ghost"); !errors.Is(err, ErrStudentNotFound) {
		t.Errorf("expected ErrStudentNotFound, got %v", err)
	}

	students, err := src.Students(ctx)
	if err != nil {
		t.Fatalf("students: %v", err)
	}
	if len(students) != 2 || students[0].ID != "s1" || students[1].ID != "s2" {
		t.Errorf("students not ordered by id: %+v", students)
	}

	if _, err := src.Listing(ctx, "l2"); err != nil {
		t.Fatalf("listing: %v", err)
	}
	if _, err := src.Listing(ctx, "ghost"); !errors.Is(err, ErrListingNotFound) {
		t.Errorf("expected ErrListingNotFound, got %v", err)
	}

	open, err := src.OpenListings(ctx)
	if err != nil {
		t.Fatalf("open listings: %v", err)
	}
	if len(open) != 1 || open[0].ID != "l1" {
		t.Errorf("open listings = %+v", open)
	}
}

func TestMemorySourceStoreSeasons(t *testing.T) {
	src := seededSourceStore()
	ctx := context.Background()

	seasons, err := src.SportSeasons(ctx)
	if err != nil {
		t.Fatalf("seasons: %v", err)
	}
	if len(seasons) != 2 || seasons[0].SportName != "Basketball" {
		t.Errorf("seasons not ordered by sport name: %+v", seasons)
	}

	byID, err := src.SportSeasonMap(ctx)
	if err != nil {
		t.Fatalf("season map: %v", err)
	}
	if len(byID) != 2 {
		t.Fatalf("expected 2 seasons in map, got %d", len(byID))
	}
	if byID["sea-1"].SportName != "Soccer" {
		t.Errorf("sea-1 = %+v", byID["sea-1"])
	}
}

func TestMemorySourceStoreScheduleLifecycle(t *testing.T) {
	src := seededSourceStore()
	ctx := context.Background()

	created, err := src.CreateSchedule(ctx, model.ScheduleEntry{
		StudentID:    "s1",
		ScheduleType: model.ScheduleTypeCustom,
		IsActive:     true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected a generated id")
	}

	withID, err := src.CreateSchedule(ctx, model.ScheduleEntry{
		ID:           "sch-fixed",
		StudentID:    "s1",
		ScheduleType: model.ScheduleTypeWork,
		IsActive:     true,
	})
	if err != nil {
		t.Fatalf("create with id: %v", err)
	}
	if withID.ID != "sch-fixed" {
		t.Errorf("caller-supplied id was replaced: %q", withID.ID)
	}

	entries, err := src.SchedulesByStudent(ctx, "s1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	if err := src.DeleteSchedule(ctx, "s2", created.ID); !errors.Is(err, ErrScheduleNotFound) {
		t.Errorf("deleting another student's entry should fail, got %v", err)
	}
	if err := src.DeleteSchedule(ctx, "s1", created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := src.DeleteSchedule(ctx, "s1", created.ID); !errors.Is(err, ErrScheduleNotFound) {
		t.Errorf("second delete should fail, got %v", err)
	}

	entries, _ = src.SchedulesByStudent(ctx, "s1")
	if len(entries) != 1 {
		t.Errorf("expected 1 entry after delete, got %d", len(entries))
	}
}

func TestMemorySourceStorePutReplaces(t *testing.T) {
	src := seededSourceStore()
	ctx := context.Background()

	src.PutStudent(model.StudentProfile{ID: "s1", FirstName: "Renamed", TenantID: "tenant-a"})
	got, err := src.Student(ctx, "s1")
	if err != nil {
		t.Fatalf("student: %v", err)
	}
	if got.FirstName != "Renamed" {
		t.Errorf("FirstName = %q, want Renamed", got.FirstName)
	}

	students, _ := src.Students(ctx)
	if len(students) != 2 {
		t.Errorf("put should replace, not append: %d students", len(students))
	}
}
