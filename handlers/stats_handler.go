package handlers

import (
	"sort"
	"time"

	"github.com/fairuzullah/edu_lms/authz"
	"github.com/fairuzullah/edu_lms/middleware"
	"github.com/fairuzullah/edu_lms/models"
	"github.com/fairuzullah/edu_lms/utils"
	"github.com/gofiber/fiber/v2"
)

// DashboardStats returns role-dependent headline numbers.
func (h *Handler) DashboardStats(c *fiber.Ctx) error {
	p := middleware.Principal(c)

	switch p.Role {
	case models.RoleLearner:
		var stats struct {
			EnrolledCourses  int64    `json:"enrolled_courses"`
			CompletedCourses int64    `json:"completed_courses"`
			AvgProgress      *float64 `json:"avg_progress"`
		}
		h.DB.Model(&models.Enrollment{}).Where("learner_id = ?", p.ID).Count(&stats.EnrolledCourses)
		h.DB.Model(&models.Enrollment{}).Where("learner_id = ? AND completed = ?", p.ID, true).Count(&stats.CompletedCourses)
		h.DB.Model(&models.Enrollment{}).Where("learner_id = ?", p.ID).
			Select("AVG(progress)").Scan(&stats.AvgProgress)
		return c.JSON(stats)

	case models.RoleEducator:
		var stats struct {
			TotalCourses     int64 `json:"total_courses"`
			PublishedCourses int64 `json:"published_courses"`
			TotalStudents    int64 `json:"total_students"`
		}
		h.DB.Model(&models.Course{}).Where("educator_id = ?", p.ID).Count(&stats.TotalCourses)
		h.DB.Model(&models.Course{}).Where("educator_id = ? AND is_published = ?", p.ID, true).Count(&stats.PublishedCourses)
		h.DB.Model(&models.Enrollment{}).
			Joins("JOIN courses ON courses.id = enrollments.course_id").
			Where("courses.educator_id = ?", p.ID).
			Distinct("enrollments.learner_id").Count(&stats.TotalStudents)
		return c.JSON(stats)

	default:
		return c.JSON(fiber.Map{})
	}
}

type studentProgressRow struct {
	StudentID        uint      `json:"student_id"`
	StudentName      string    `json:"student_name"`
	StudentEmail     string    `json:"student_email"`
	CourseID         uint      `json:"course_id"`
	CourseTitle      string    `json:"course_title"`
	EnrolledAt       time.Time `json:"enrolled_at"`
	Progress         int       `json:"progress"`
	Completed        bool      `json:"completed"`
	SubmissionsCount int64     `json:"submissions_count"`
	AvgMarks         *float64  `json:"avg_marks"`
}

type courseProgress struct {
	CourseTitle       string               `json:"course_title"`
	Students          []studentProgressRow `json:"students"`
	AvgProgress       float64              `json:"avg_progress"`
	CompletedStudents int                  `json:"completed_students"`
}

// StudentProgress lists enrollment progress across the educator's courses
// together with aggregate statistics.
func (h *Handler) StudentProgress(c *fiber.Ctx) error {
	p := middleware.Principal(c)

	q := h.DB.Model(&models.Enrollment{}).
		Select(`users.id AS student_id, users.full_name AS student_name, users.email AS student_email,
			courses.id AS course_id, courses.title AS course_title,
			enrollments.enrolled_at, enrollments.progress, enrollments.completed,
			(SELECT COUNT(*) FROM submissions s JOIN assessments a ON s.assessment_id = a.id
				WHERE a.course_id = courses.id AND s.learner_id = users.id) AS submissions_count,
			(SELECT AVG(s.marks) FROM submissions s JOIN assessments a ON s.assessment_id = a.id
				WHERE a.course_id = courses.id AND s.learner_id = users.id AND s.marks IS NOT NULL) AS avg_marks`).
		Joins("JOIN users ON users.id = enrollments.learner_id").
		Joins("JOIN courses ON courses.id = enrollments.course_id").
		Where("courses.educator_id = ?", p.ID)
	if courseID, ok := authz.ParseID(c.Query("course_id")); ok {
		q = q.Where("courses.id = ?", courseID)
	}

	var progress []studentProgressRow
	if err := q.Order("courses.title, users.full_name").Scan(&progress).Error; err != nil {
		return storeError(c)
	}

	stats := struct {
		TotalStudents     int                      `json:"total_students"`
		AvgProgress       float64                  `json:"avg_progress"`
		CompletedStudents int                      `json:"completed_students"`
		AvgGrade          float64                  `json:"avg_grade"`
		ByCourse          map[uint]*courseProgress `json:"by_course"`
	}{ByCourse: map[uint]*courseProgress{}}

	if len(progress) > 0 {
		students := map[uint]bool{}
		var progressSum, gradeSum float64
		var graded int
		for _, row := range progress {
			students[row.StudentID] = true
			progressSum += float64(row.Progress)
			if row.Completed {
				stats.CompletedStudents++
			}
			if row.AvgMarks != nil {
				gradeSum += *row.AvgMarks
				graded++
			}

			course := stats.ByCourse[row.CourseID]
			if course == nil {
				course = &courseProgress{CourseTitle: row.CourseTitle}
				stats.ByCourse[row.CourseID] = course
			}
			course.Students = append(course.Students, row)
		}

		stats.TotalStudents = len(students)
		stats.AvgProgress = progressSum / float64(len(progress))
		if graded > 0 {
			stats.AvgGrade = gradeSum / float64(graded)
		}

		for _, course := range stats.ByCourse {
			var sum float64
			for _, s := range course.Students {
				sum += float64(s.Progress)
				if s.Completed {
					course.CompletedStudents++
				}
			}
			course.AvgProgress = sum / float64(len(course.Students))
		}
	}

	return c.JSON(fiber.Map{
		"progress": progress,
		"stats":    stats,
	})
}

// EnrollmentStats summarises enrollment and progress for one course.
func (h *Handler) EnrollmentStats(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
	}

	dec, err := h.Auth.CanManage(authz.KindCourse, id, middleware.Principal(c))
	if err != nil {
		return storeError(c)
	}
	if dec.Outcome != authz.Permit {
		return decisionError(c, dec, "Course", "view these statistics")
	}

	var stats struct {
		TotalStudents     int64      `json:"total_students"`
		AvgProgress       *float64   `json:"avg_progress"`
		CompletedStudents int64      `json:"completed_students"`
		FirstEnrollment   *time.Time `json:"first_enrollment"`
		LastEnrollment    *time.Time `json:"last_enrollment"`
	}
	err = h.DB.Model(&models.Enrollment{}).
		Select(`COUNT(*) AS total_students, AVG(progress) AS avg_progress,
			SUM(CASE WHEN completed THEN 1 ELSE 0 END) AS completed_students,
			MIN(enrolled_at) AS first_enrollment, MAX(enrolled_at) AS last_enrollment`).
		Where("course_id = ?", id).
		Scan(&stats).Error
	if err != nil {
		return storeError(c)
	}

	type bucket struct {
		ProgressRange string `json:"progress_range"`
		StudentCount  int64  `json:"student_count"`
	}
	var distribution []bucket
	err = h.DB.Model(&models.Enrollment{}).
		Select(`CASE
			WHEN progress = 0 THEN 'Not Started'
			WHEN progress < 25 THEN '0-25%'
			WHEN progress < 50 THEN '25-50%'
			WHEN progress < 75 THEN '50-75%'
			WHEN progress < 100 THEN '75-99%'
			ELSE 'Completed'
		END AS progress_range, COUNT(*) AS student_count`).
		Where("course_id = ?", id).
		Group("1").
		Scan(&distribution).Error
	if err != nil {
		return storeError(c)
	}

	order := map[string]int{"Not Started": 1, "0-25%": 2, "25-50%": 3, "50-75%": 4, "75-99%": 5, "Completed": 6}
	sort.Slice(distribution, func(i, j int) bool {
		return order[distribution[i].ProgressRange] < order[distribution[j].ProgressRange]
	})

	return c.JSON(fiber.Map{
		"total_students":        stats.TotalStudents,
		"avg_progress":          stats.AvgProgress,
		"completed_students":    stats.CompletedStudents,
		"first_enrollment":      stats.FirstEnrollment,
		"last_enrollment":       stats.LastEnrollment,
		"progress_distribution": distribution,
	})
}

// SubmissionStats aggregates grading state per assessment for the educator.
func (h *Handler) SubmissionStats(c *fiber.Ctx) error {
	p := middleware.Principal(c)

	type row struct {
		AssessmentID      uint     `json:"assessment_id"`
		AssessmentTitle   string   `json:"assessment_title"`
		CourseTitle       string   `json:"course_title"`
		TotalSubmissions  int64    `json:"total_submissions"`
		GradedSubmissions int64    `json:"graded_submissions"`
		AvgMarks          *float64 `json:"avg_marks"`
	}

	var stats []row
	err := h.DB.Model(&models.Assessment{}).
		Select(`assessments.id AS assessment_id, assessments.title AS assessment_title,
			courses.title AS course_title,
			COUNT(submissions.id) AS total_submissions,
			SUM(CASE WHEN submissions.marks IS NOT NULL THEN 1 ELSE 0 END) AS graded_submissions,
			AVG(submissions.marks) AS avg_marks`).
		Joins("JOIN courses ON courses.id = assessments.course_id").
		Joins("LEFT JOIN submissions ON submissions.assessment_id = assessments.id").
		Where("courses.educator_id = ?", p.ID).
		Group("assessments.id, assessments.title, courses.title").
		Order("course_title, assessment_title").
		Scan(&stats).Error
	if err != nil {
		return storeError(c)
	}
	return c.JSON(stats)
}

// UpcomingTasks lists what the educator should act on next: ungraded
// submissions waiting for marks and assessment deadlines still ahead,
// merged and ordered by due date.
func (h *Handler) UpcomingTasks(c *fiber.Ctx) error {
	p := middleware.Principal(c)

	type task struct {
		TaskType        string    `json:"task_type"`
		TaskID          uint      `json:"task_id"`
		TaskTitle       string    `json:"task_title"`
		AssessmentTitle string    `json:"assessment_title"`
		CourseTitle     string    `json:"course_title"`
		DueDate         time.Time `json:"due_date"`
		Priority        string    `json:"priority"`
		DueRelative     string    `json:"due_relative"`
	}

	var ungraded []task
	err := h.DB.Model(&models.Submission{}).
		Select(`'grade_submission' AS task_type, submissions.id AS task_id,
			'Grade submission' AS task_title, assessments.title AS assessment_title,
			courses.title AS course_title, submissions.submitted_at AS due_date`).
		Joins("JOIN assessments ON assessments.id = submissions.assessment_id").
		Joins("JOIN courses ON courses.id = assessments.course_id").
		Where("courses.educator_id = ? AND submissions.marks IS NULL", p.ID).
		Order("submissions.submitted_at ASC").Limit(5).
		Scan(&ungraded).Error
	if err != nil {
		return storeError(c)
	}

	now := time.Now()
	var deadlines []task
	err = h.DB.Model(&models.Assessment{}).
		Select(`'assessment_deadline' AS task_type, assessments.id AS task_id,
			'Assessment deadline approaching' AS task_title, assessments.title AS assessment_title,
			courses.title AS course_title, assessments.deadline AS due_date`).
		Joins("JOIN courses ON courses.id = assessments.course_id").
		Where("courses.educator_id = ? AND assessments.deadline IS NOT NULL AND assessments.deadline > ?", p.ID, now).
		Order("assessments.deadline ASC").Limit(5).
		Scan(&deadlines).Error
	if err != nil {
		return storeError(c)
	}

	tasks := append(ungraded, deadlines...)
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].DueDate.Before(tasks[j].DueDate)
	})

	for i := range tasks {
		t := &tasks[i]
		if t.TaskType == "grade_submission" {
			t.Priority = "urgent"
		} else {
			switch left := t.DueDate.Sub(now); {
			case left <= 48*time.Hour:
				t.Priority = "high"
			case left <= 7*24*time.Hour:
				t.Priority = "medium"
			default:
				t.Priority = "low"
			}
		}
		t.DueRelative = utils.TimeUntil(t.DueDate)
	}

	return c.JSON(tasks)
}

// RecentActivities interleaves the newest submissions and enrollments
// across the educator's courses.
func (h *Handler) RecentActivities(c *fiber.Ctx) error {
	p := middleware.Principal(c)

	type activity struct {
		ActivityType    string    `json:"activity_type"`
		Timestamp       time.Time `json:"timestamp"`
		StudentName     string    `json:"student_name"`
		AssessmentTitle string    `json:"assessment_title,omitempty"`
		CourseTitle     string    `json:"course_title"`
		Message         string    `json:"message"`
		TimeAgo         string    `json:"time_ago"`
	}

	var submissions []activity
	err := h.DB.Model(&models.Submission{}).
		Select(`'submission' AS activity_type, submissions.submitted_at AS timestamp,
			users.full_name AS student_name, assessments.title AS assessment_title, courses.title AS course_title`).
		Joins("JOIN assessments ON assessments.id = submissions.assessment_id").
		Joins("JOIN courses ON courses.id = assessments.course_id").
		Joins("JOIN users ON users.id = submissions.learner_id").
		Where("courses.educator_id = ?", p.ID).
		Order("submissions.submitted_at DESC").Limit(10).
		Scan(&submissions).Error
	if err != nil {
		return storeError(c)
	}

	var enrollments []activity
	err = h.DB.Model(&models.Enrollment{}).
		Select(`'enrollment' AS activity_type, enrollments.enrolled_at AS timestamp,
			users.full_name AS student_name, courses.title AS course_title`).
		Joins("JOIN courses ON courses.id = enrollments.course_id").
		Joins("JOIN users ON users.id = enrollments.learner_id").
		Where("courses.educator_id = ?", p.ID).
		Order("enrollments.enrolled_at DESC").Limit(10).
		Scan(&enrollments).Error
	if err != nil {
		return storeError(c)
	}

	activities := append(submissions, enrollments...)
	sort.Slice(activities, func(i, j int) bool {
		return activities[i].Timestamp.After(activities[j].Timestamp)
	})
	if len(activities) > 10 {
		activities = activities[:10]
	}

	for i := range activities {
		a := &activities[i]
		if a.ActivityType == "submission" {
			a.Message = a.StudentName + " submitted " + a.AssessmentTitle
		} else {
			a.Message = a.StudentName + " enrolled in " + a.CourseTitle
		}
		a.TimeAgo = utils.TimeAgo(a.Timestamp)
	}

	return c.JSON(activities)
}
