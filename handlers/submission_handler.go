package handlers

import (
	"errors"

	"github.com/fairuzullah/edu_lms/authz"
	"github.com/fairuzullah/edu_lms/middleware"
	"github.com/fairuzullah/edu_lms/models"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type SubmitRequest struct {
	SubmissionURL string `json:"submission_url" validate:"required"`
}

type GradeRequest struct {
	Marks    *int   `json:"marks" validate:"required"`
	Feedback string `json:"feedback"`
}

// SubmitAssessment records a learner's answer. Only learners enrolled in
// the assessment's course may submit.
func (h *Handler) SubmitAssessment(c *fiber.Ctx) error {
	assessmentID, ok := paramID(c, "id")
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Assessment not found"})
	}
	p := middleware.Principal(c)

	var req SubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var assessment models.Assessment
	if err := h.DB.First(&assessment, "id = ?", assessmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Assessment not found"})
		}
		return storeError(c)
	}

	var enrolled int64
	err := h.DB.Model(&models.Enrollment{}).
		Where("learner_id = ? AND course_id = ?", p.ID, assessment.CourseID).
		Count(&enrolled).Error
	if err != nil {
		return storeError(c)
	}
	if enrolled == 0 {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Not enrolled in this course"})
	}

	submission := models.Submission{
		AssessmentID:  assessmentID,
		LearnerID:     p.ID,
		SubmissionURL: req.SubmissionURL,
	}
	if err := h.DB.Create(&submission).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to submit assessment"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":       "Assessment submitted successfully",
		"submission_id": submission.ID,
	})
}

// GradeSubmission sets marks and feedback. Marks are bounded server-side
// by the assessment's total; regrading overwrites, last write wins.
func (h *Handler) GradeSubmission(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Submission not found"})
	}

	dec, err := h.Auth.CanManage(authz.KindSubmission, id, middleware.Principal(c))
	if err != nil {
		return storeError(c)
	}
	if dec.Outcome != authz.Permit {
		return decisionError(c, dec, "Submission", "grade this submission")
	}

	var req GradeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var submission models.Submission
	if err := h.DB.Preload("Assessment").First(&submission, "id = ?", id).Error; err != nil {
		return storeError(c)
	}
	if *req.Marks < 0 || *req.Marks > submission.Assessment.TotalMarks {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Marks must be between 0 and the assessment's total marks",
		})
	}

	res := h.DB.Model(&models.Submission{}).Where("id = ?", id).
		Updates(map[string]interface{}{"marks": *req.Marks, "feedback": req.Feedback})
	if res.Error != nil {
		return storeError(c)
	}
	return c.JSON(fiber.Map{
		"message": "Submission graded successfully",
		"updated": res.RowsAffected > 0,
	})
}

type SubmissionEditRequest struct {
	SubmissionURL string `json:"submission_url" validate:"required"`
}

// EditSubmission lets the author replace the file reference, but only
// while the submission is still ungraded.
func (h *Handler) EditSubmission(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Submission not found"})
	}

	dec, err := h.Auth.CanAuthor(authz.KindSubmission, id, middleware.Principal(c))
	if err != nil {
		return storeError(c)
	}
	if dec.Outcome != authz.Permit {
		return decisionError(c, dec, "Submission", "edit this submission")
	}

	var req SubmissionEditRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var submission models.Submission
	if err := h.DB.First(&submission, "id = ?", id).Error; err != nil {
		return storeError(c)
	}
	if submission.Marks != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Submission has already been graded and can no longer be edited"})
	}

	res := h.DB.Model(&models.Submission{}).Where("id = ?", id).
		Update("submission_url", req.SubmissionURL)
	if res.Error != nil {
		return storeError(c)
	}
	return c.JSON(fiber.Map{
		"message": "Submission updated successfully",
		"updated": res.RowsAffected > 0,
	})
}

func (h *Handler) DeleteSubmission(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Submission not found"})
	}

	dec, err := h.Auth.CanAuthor(authz.KindSubmission, id, middleware.Principal(c))
	if err != nil {
		return storeError(c)
	}
	if dec.Outcome != authz.Permit {
		return decisionError(c, dec, "Submission", "delete this submission")
	}

	res := h.DB.Delete(&models.Submission{}, id)
	if res.Error != nil {
		return storeError(c)
	}
	return c.JSON(fiber.Map{
		"message": "Submission deleted successfully",
		"deleted": res.RowsAffected > 0,
	})
}

type learnerSubmission struct {
	models.Submission
	AssessmentTitle string `json:"assessment_title"`
	CourseTitle     string `json:"course_title"`
}

func (h *Handler) learnerSubmissions(c *fiber.Ctx, limit int) error {
	p := middleware.Principal(c)

	q := h.DB.Model(&models.Submission{}).
		Select("submissions.*, assessments.title AS assessment_title, courses.title AS course_title").
		Joins("JOIN assessments ON assessments.id = submissions.assessment_id").
		Joins("JOIN courses ON courses.id = assessments.course_id").
		Where("submissions.learner_id = ?", p.ID).
		Order("submissions.submitted_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var submissions []learnerSubmission
	if err := q.Scan(&submissions).Error; err != nil {
		return storeError(c)
	}
	return c.JSON(submissions)
}

func (h *Handler) LearnerSubmissions(c *fiber.Ctx) error {
	return h.learnerSubmissions(c, 0)
}

func (h *Handler) LearnerRecentSubmissions(c *fiber.Ctx) error {
	return h.learnerSubmissions(c, 5)
}

// SubmissionFile resolves the stored file reference for a submission.
func (h *Handler) SubmissionFile(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Submission not found"})
	}

	var submission models.Submission
	if err := h.DB.First(&submission, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Submission not found"})
		}
		return storeError(c)
	}

	return c.JSON(fiber.Map{
		"file_url":  submission.SubmissionURL,
		"file_name": fileName(submission.SubmissionURL),
	})
}
