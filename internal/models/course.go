package models

import (
	"time"

	"gorm.io/gorm"
)

type EnrollmentStatus string

const (
	EnrollmentActive    EnrollmentStatus = "active"
	EnrollmentSuspended EnrollmentStatus = "suspended"
	EnrollmentCompleted EnrollmentStatus = "completed"
	EnrollmentCancelled EnrollmentStatus = "cancelled"
)

type Course struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	TitleEn      string `json:"title_en" gorm:"not null;size:200"`
	TitleAr      string `json:"title_ar" gorm:"size:200"`
	InstructorID string `json:"instructor_id" gorm:"not null;index;size:255"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Sections []Section `json:"sections,omitempty" gorm:"foreignKey:CourseID"`
}

type Section struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	CourseID uint   `json:"course_id" gorm:"not null;index"`
	TitleEn  string `json:"title_en" gorm:"not null;size:200"`
	TitleAr  string `json:"title_ar" gorm:"size:200"`
	Order    int    `json:"order" gorm:"default:0"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Course *Course `json:"course,omitempty" gorm:"foreignKey:CourseID"`
}

type Lesson struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	SectionID uint   `json:"section_id" gorm:"not null;index"`
	TitleEn   string `json:"title_en" gorm:"not null;size:200"`
	TitleAr   string `json:"title_ar" gorm:"size:200"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

type Enrollment struct {
	ID         uint             `json:"id" gorm:"primaryKey"`
	UserID     string           `json:"user_id" gorm:"not null;index:idx_enrollment_user_course;size:255"`
	CourseID   uint             `json:"course_id" gorm:"not null;index:idx_enrollment_user_course"`
	Status     EnrollmentStatus `json:"status" gorm:"default:active;size:20"`
	EnrolledAt time.Time        `json:"enrolled_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Course) TableName() string {
	return "courses"
}

func (Section) TableName() string {
	return "course_sections"
}

func (Lesson) TableName() string {
	return "lessons"
}

func (Enrollment) TableName() string {
	return "enrollments"
}
