package handlers

import (
	"archive/zip"
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/fairuzullah/edu_lms/authz"
	"github.com/fairuzullah/edu_lms/middleware"
	"github.com/fairuzullah/edu_lms/models"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AssessmentRequest struct {
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description" validate:"required"`
	TotalMarks  int        `json:"total_marks" validate:"gte=0"`
	Deadline    *time.Time `json:"deadline"`
}

type AssessmentUpdateRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	TotalMarks  *int       `json:"total_marks"`
	Deadline    *time.Time `json:"deadline"`
}

func (h *Handler) ListCourseAssessments(c *fiber.Ctx) error {
	courseID, ok := paramID(c, "id")
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
	}

	var exists int64
	if err := h.DB.Model(&models.Course{}).Where("id = ?", courseID).Count(&exists).Error; err != nil {
		return storeError(c)
	}
	if exists == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
	}

	var assessments []models.Assessment
	if err := h.DB.Where("course_id = ?", courseID).Order("deadline ASC").Find(&assessments).Error; err != nil {
		return storeError(c)
	}
	return c.JSON(assessments)
}

func (h *Handler) CreateAssessment(c *fiber.Ctx) error {
	courseID, ok := paramID(c, "id")
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
	}

	dec, err := h.Auth.CanManage(authz.KindCourse, courseID, middleware.Principal(c))
	if err != nil {
		return storeError(c)
	}
	if dec.Outcome != authz.Permit {
		return decisionError(c, dec, "Course", "create assessments for this course")
	}

	var req AssessmentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	assessment := models.Assessment{
		CourseID:    courseID,
		Title:       req.Title,
		Description: req.Description,
		TotalMarks:  req.TotalMarks,
		Deadline:    req.Deadline,
	}
	if assessment.TotalMarks == 0 {
		assessment.TotalMarks = 100
	}

	if err := h.DB.Create(&assessment).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create assessment"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":    "Assessment created successfully",
		"assessment": assessment,
	})
}

func (h *Handler) GetAssessment(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Assessment not found"})
	}

	type assessmentDetail struct {
		models.Assessment
		CourseTitle     string `json:"course_title"`
		SubmissionCount int64  `json:"submission_count"`
	}

	var assessment assessmentDetail
	res := h.DB.Model(&models.Assessment{}).
		Select("assessments.*, courses.title AS course_title, (SELECT COUNT(*) FROM submissions s WHERE s.assessment_id = assessments.id) AS submission_count").
		Joins("JOIN courses ON courses.id = assessments.course_id").
		Where("assessments.id = ?", id).
		Limit(1).Scan(&assessment)
	if res.Error != nil {
		return storeError(c)
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Assessment not found"})
	}
	return c.JSON(assessment)
}

func (h *Handler) UpdateAssessment(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Assessment not found"})
	}

	dec, err := h.Auth.CanManage(authz.KindAssessment, id, middleware.Principal(c))
	if err != nil {
		return storeError(c)
	}
	if dec.Outcome != authz.Permit {
		return decisionError(c, dec, "Assessment", "update this assessment")
	}

	var req AssessmentUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.TotalMarks != nil {
		updates["total_marks"] = *req.TotalMarks
	}
	if req.Deadline != nil {
		updates["deadline"] = *req.Deadline
	}
	if len(updates) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No updates provided"})
	}

	res := h.DB.Model(&models.Assessment{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return storeError(c)
	}
	return c.JSON(fiber.Map{
		"message": "Assessment updated successfully",
		"updated": res.RowsAffected > 0,
	})
}

// DeleteAssessment removes the assessment together with its submissions.
func (h *Handler) DeleteAssessment(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Assessment not found"})
	}

	dec, err := h.Auth.CanManage(authz.KindAssessment, id, middleware.Principal(c))
	if err != nil {
		return storeError(c)
	}
	if dec.Outcome != authz.Permit {
		return decisionError(c, dec, "Assessment", "delete this assessment")
	}

	var deleted bool
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("assessment_id = ?", id).Delete(&models.Submission{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Assessment{}, id)
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return storeError(c)
	}

	return c.JSON(fiber.Map{
		"message": "Assessment deleted successfully",
		"deleted": deleted,
	})
}

type submissionRow struct {
	models.Submission
	StudentName  string `json:"student_name"`
	StudentEmail string `json:"student_email"`
}

func (h *Handler) ListAssessmentSubmissions(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Assessment not found"})
	}

	dec, err := h.Auth.CanManage(authz.KindAssessment, id, middleware.Principal(c))
	if err != nil {
		return storeError(c)
	}
	if dec.Outcome != authz.Permit {
		return decisionError(c, dec, "Assessment", "view these submissions")
	}

	var submissions []submissionRow
	err = h.DB.Model(&models.Submission{}).
		Select("submissions.*, users.full_name AS student_name, users.email AS student_email").
		Joins("JOIN users ON users.id = submissions.learner_id").
		Where("submissions.assessment_id = ?", id).
		Order("submissions.submitted_at DESC").
		Scan(&submissions).Error
	if err != nil {
		return storeError(c)
	}
	return c.JSON(submissions)
}

var unsafeNameChars = regexp.MustCompile(`[^a-z0-9]+`)

// DownloadAllSubmissions streams a ZIP of every submission file for the
// assessment. The archive is written incrementally, one file at a time, so
// memory stays bounded regardless of how many submissions exist.
func (h *Handler) DownloadAllSubmissions(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Assessment not found"})
	}

	dec, err := h.Auth.CanManage(authz.KindAssessment, id, middleware.Principal(c))
	if err != nil {
		return storeError(c)
	}
	if dec.Outcome != authz.Permit {
		return decisionError(c, dec, "Assessment", "download these submissions")
	}

	var submissions []submissionRow
	err = h.DB.Model(&models.Submission{}).
		Select("submissions.*, users.full_name AS student_name, users.email AS student_email").
		Joins("JOIN users ON users.id = submissions.learner_id").
		Where("submissions.assessment_id = ?", id).
		Scan(&submissions).Error
	if err != nil {
		return storeError(c)
	}
	if len(submissions) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No submissions found"})
	}

	c.Set(fiber.HeaderContentType, "application/zip")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="submissions-assessment-%d.zip"`, id))

	store := h.Store
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		zw := zip.NewWriter(w)
		defer zw.Close()

		for _, sub := range submissions {
			path := store.Path(sub.SubmissionURL)
			if path == "" {
				continue
			}

			f, err := os.Open(path)
			if err != nil {
				log.Printf("Skipping missing submission file %s: %v", path, err)
				continue
			}

			safe := unsafeNameChars.ReplaceAllString(strings.ToLower(sub.StudentName), "_")
			entry, err := zw.Create(fmt.Sprintf("%s_%d%s", safe, sub.ID, filepath.Ext(path)))
			if err == nil {
				_, err = io.Copy(entry, f)
			}
			f.Close()
			if err != nil {
				log.Printf("Error bundling submission %d: %v", sub.ID, err)
				return
			}
		}
	})
	return nil
}
