package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"github.com/SAP-F-2025/lecture-service/internal/auth"
	"github.com/SAP-F-2025/lecture-service/internal/cache"
	"github.com/SAP-F-2025/lecture-service/internal/models"
	"github.com/SAP-F-2025/lecture-service/internal/repositories"
)

const (
	statsCacheKey    = "schools"
	facultySheet     = "Faculty"
	msgOwnSchoolStat = "You can only view statistics of your own school."
)

var facultyHeader = []string{"ID", "Name", "Department", "Lectures Analyzed", "Average Score", "Last Active"}

type dashboardService struct {
	repo   repositories.Repository
	cache  *cache.CacheManager
	ttl    time.Duration
	logger *slog.Logger
}

// NewDashboardService builds the dashboard; a zero ttl uses the default stats ttl
func NewDashboardService(repo repositories.Repository, cacheManager *cache.CacheManager, ttl time.Duration, logger *slog.Logger) DashboardService {
	if ttl <= 0 {
		ttl = cache.StatsCacheConfig.TTL
	}
	if cacheManager == nil {
		cacheManager = cache.NewCacheManager(nil)
	}
	return &dashboardService{
		repo:   repo,
		cache:  cacheManager,
		ttl:    ttl,
		logger: logger,
	}
}

// GetStats aggregates faculty counts and analyzed lectures for every school
func (s *dashboardService) GetStats(ctx context.Context) ([]models.SchoolStats, error) {
	if err := auth.RequireRole(auth.PrincipalFrom(ctx), models.RoleSuperAdmin); err != nil {
		return nil, fromPolicy(err, "Only SUPER_ADMIN can view school statistics.")
	}

	var stats []models.SchoolStats
	err := s.cache.Stats.CacheOrExecute(ctx, statsCacheKey, &stats, s.ttl, func() (interface{}, error) {
		return s.computeSchoolStats(ctx)
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *dashboardService) computeSchoolStats(ctx context.Context) ([]models.SchoolStats, error) {
	s.logger.DebugContext(ctx, "Computing school statistics")

	var (
		faculty  []repositories.SchoolFacultyCount
		lectures []repositories.SchoolLectureStats
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		faculty, err = s.repo.Dashboard().CountFacultyBySchool(gctx, nil)
		return err
	})
	g.Go(func() error {
		var err error
		lectures, err = s.repo.Dashboard().GetLectureStatsBySchool(gctx, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	bySchool := make(map[string]repositories.SchoolLectureStats, len(lectures))
	for _, l := range lectures {
		bySchool[strings.ToLower(strings.TrimSpace(l.School))] = l
	}

	stats := make([]models.SchoolStats, 0, len(faculty))
	for _, f := range faculty {
		entry := models.SchoolStats{SchoolName: f.School, FacultyCount: f.Count}
		if l, ok := bySchool[strings.ToLower(strings.TrimSpace(f.School))]; ok {
			entry.LecturesAnalyzed = l.LecturesAnalyzed
			entry.AvgScore = roundScore(l.AvgScore)
		}
		stats = append(stats, entry)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].SchoolName < stats[j].SchoolName })
	return stats, nil
}

// GetSchoolFaculty returns per-teacher statistics of one school
func (s *dashboardService) GetSchoolFaculty(ctx context.Context, school string) ([]models.FacultyStats, error) {
	school = strings.TrimSpace(school)
	if school == "" {
		return nil, BadRequest("School name is required.")
	}
	if err := auth.AuthorizeSchool(auth.PrincipalFrom(ctx), school); err != nil {
		return nil, fromPolicy(err, msgOwnSchoolStat)
	}

	var faculty []models.FacultyStats
	err := s.cache.Faculty.CacheOrExecute(ctx, cache.SchoolKey(school), &faculty, s.ttl, func() (interface{}, error) {
		return s.computeFacultyStats(ctx, school)
	})
	if err != nil {
		return nil, err
	}
	return faculty, nil
}

func (s *dashboardService) computeFacultyStats(ctx context.Context, school string) ([]models.FacultyStats, error) {
	var (
		profiles []*models.TeacherProfile
		stats    []repositories.TeacherLectureStats
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profiles, err = s.repo.TeacherProfile().List(gctx, repositories.TeacherProfileFilters{School: school, Limit: -1})
		return err
	})
	g.Go(func() error {
		var err error
		stats, err = s.repo.Dashboard().GetTeacherStatsBySchool(gctx, nil, school)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(profiles))
	for _, p := range profiles {
		ids = append(ids, p.ID)
	}
	lastActive, err := s.repo.Dashboard().GetLastActiveByTeachers(ctx, nil, ids)
	if err != nil {
		return nil, err
	}

	byProfile := make(map[uint]repositories.TeacherLectureStats, len(stats))
	for _, st := range stats {
		byProfile[st.TeacherProfileID] = st
	}

	faculty := make([]models.FacultyStats, 0, len(profiles))
	for _, p := range profiles {
		entry := models.FacultyStats{ID: p.ID, Department: p.Department}
		if p.User != nil {
			entry.Name = p.User.Name
		}
		if st, ok := byProfile[p.ID]; ok {
			entry.LecturesAnalyzed = st.LecturesAnalyzed
			entry.AvgScore = roundScore(st.AvgScore)
		}
		if t, ok := lastActive[p.ID]; ok {
			entry.LastActive = &t
		}
		faculty = append(faculty, entry)
	}
	return faculty, nil
}

// ExportSchoolFaculty writes the faculty statistics as a single-sheet workbook
func (s *dashboardService) ExportSchoolFaculty(ctx context.Context, school string, w io.Writer) error {
	faculty, err := s.GetSchoolFaculty(ctx, school)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), facultySheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	for col, title := range facultyHeader {
		if err := setCell(f, col+1, 1, title); err != nil {
			return err
		}
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetRowStyle(facultySheet, 1, 1, style)
	}

	for i, fs := range faculty {
		row := i + 2
		lastActive := ""
		if fs.LastActive != nil {
			lastActive = fs.LastActive.UTC().Format(time.RFC3339)
		}
		values := []interface{}{fs.ID, fs.Name, fs.Department, fs.LecturesAnalyzed, fs.AvgScore, lastActive}
		for col, v := range values {
			if err := setCell(f, col+1, row, v); err != nil {
				return err
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	s.logger.InfoContext(ctx, "Exported faculty statistics", "school", school, "rows", len(faculty))
	return nil
}

func setCell(f *excelize.File, col, row int, value interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(facultySheet, cell, value); err != nil {
		return fmt.Errorf("failed to set cell %s: %w", cell, err)
	}
	return nil
}

// roundScore rounds an average to two decimals, zero when nothing was scored
func roundScore(avg *float64) float64 {
	if avg == nil {
		return 0
	}
	return math.Round(*avg*100) / 100
}
