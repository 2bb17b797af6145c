package main

import (
	"context"
	"fmt"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/mwangaza/darasa/core/school"
	"github.com/mwangaza/darasa/core/user"
)

// seed loads a demo school with one teacher, three classes and enough student
// activity to make the dashboard interesting. Safe to run repeatedly only on
// an empty database; it does not deduplicate.
func (cli *commandLine) seed() error {
	ctx := context.Background()
	now := time.Now().UTC()

	sch, err := cli.schRepo.CreateSchool(ctx, school.School{Name: "Lincoln High School", Timezone: "America/New_York"})
	if err != nil {
		return err
	}

	teacher := user.User{
		Email:     "teacher@lincoln.edu",
		Name:      "Ms. Johnson",
		Role:      user.RoleTeacher,
		SchoolID:  sch.ID,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err = teacher.SetPassword("teachme"); err != nil {
		return err
	}
	if teacher, err = cli.usrRepo.CreateUser(ctx, teacher); err != nil {
		return err
	}

	classNames := []string{"Algebra I - Period 1", "Algebra I - Period 2", "Geometry - Period 3"}
	classes := make([]school.Class, 0, len(classNames))
	for _, name := range classNames {
		cls, err := cli.schRepo.CreateClass(ctx, school.Class{SchoolID: sch.ID, TeacherID: teacher.ID, Name: name})
		if err != nil {
			return err
		}
		classes = append(classes, cls)
	}

	rosters := [][]string{
		{"Alice Smith", "Bob Jones", "Charlie Brown", "Diana Prince", "Eve Wilson"},
		{"Frank Miller", "Grace Lee", "Henry Davis", "Ivy Chen"},
		{"Jack Taylor", "Kate Anderson", "Liam O'Brien", "Mia Rodriguez", "Noah Kim", "Olivia White"},
	}
	students := make([][]school.Student, len(rosters))
	for i, names := range rosters {
		for j, name := range names {
			std, err := cli.schRepo.CreateStudent(ctx, school.Student{
				ClassID: classes[i].ID,
				Name:    name,
				Email:   null.StringFrom(fmt.Sprintf("student%d%d@example.com", i+1, j+1)),
			})
			if err != nil {
				return err
			}
			students[i] = append(students[i], std)
		}
	}

	asg1, err := cli.schRepo.CreateAssignment(ctx, school.Assignment{
		ClassID:         classes[0].ID,
		Title:           "Linear Equations Practice",
		Topic:           "Linear Equations",
		DueAt:           now.Add(3 * 24 * time.Hour),
		TimeEstimateMin: 30,
	})
	if err != nil {
		return err
	}
	if _, err = cli.schRepo.CreateAssignment(ctx, school.Assignment{
		ClassID:         classes[0].ID,
		Title:           "Quadratic Functions Quiz",
		Topic:           "Quadratic Functions",
		DueAt:           now.Add(5 * 24 * time.Hour),
		TimeEstimateMin: 20,
	}); err != nil {
		return err
	}

	scores := []float64{95.5, 87.0, 72.5}
	for i, score := range scores {
		if _, err = cli.schRepo.CreateSubmission(ctx, school.Submission{
			AssignmentID: asg1.ID,
			StudentID:    students[0][i].ID,
			ScorePct:     score,
			CompletedAt:  now.Add(-time.Duration(i+1) * 24 * time.Hour),
		}); err != nil {
			return err
		}
	}

	sessions := []school.PracticeSession{
		{StudentID: students[0][0].ID, StartedAt: now.Add(-3 * 24 * time.Hour), DurationMin: 25, AccuracyPct: 92.0},
		{StudentID: students[0][0].ID, StartedAt: now.Add(-24 * time.Hour), DurationMin: 15, AccuracyPct: 88.0},
		{StudentID: students[0][1].ID, StartedAt: now.Add(-2 * 24 * time.Hour), DurationMin: 30, AccuracyPct: 75.5},
		{StudentID: students[0][2].ID, StartedAt: now.Add(-9 * 24 * time.Hour), DurationMin: 20, AccuracyPct: 81.0},
	}
	for _, sess := range sessions {
		if _, err = cli.schRepo.CreatePracticeSession(ctx, sess); err != nil {
			return err
		}
	}

	moods := []school.MoodCheck{
		{StudentID: students[0][0].ID, Date: now.Add(-24 * time.Hour), MoodScore: 4},
		{StudentID: students[0][1].ID, Date: now.Add(-24 * time.Hour), MoodScore: 2},
		{StudentID: students[0][2].ID, Date: now.Add(-2 * 24 * time.Hour), MoodScore: 3},
		{StudentID: students[0][2].ID, Date: now.Add(-24 * time.Hour), MoodScore: 1},
	}
	for _, mood := range moods {
		if _, err = cli.schRepo.CreateMoodCheck(ctx, mood); err != nil {
			return err
		}
	}

	fmt.Printf("seeded school %s with teacher %s (%s)\n", sch.Name, teacher.Name, teacher.Email)
	return nil
}
