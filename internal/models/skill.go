package models

import (
	"encoding/json"

	"gorm.io/datatypes"
)

type Skill struct {
	BaseModel
	UserID      string         `gorm:"type:varchar(36);index;not null" json:"user_id"`
	Title       string         `gorm:"size:120;not null" json:"title"`
	Category    string         `gorm:"size:80;index" json:"category"`
	Description string         `gorm:"type:text" json:"description"`
	SkillType   SkillType      `gorm:"type:varchar(10);not null;index" json:"skill_type"`
	SkillLevel  SkillLevel     `gorm:"type:varchar(20);default:'intermediate'" json:"skill_level"`
	Tags        datatypes.JSON `json:"tags"`
}

func (s *Skill) GetTags() []string {
	tags := []string{}
	if len(s.Tags) > 0 {
		_ = json.Unmarshal(s.Tags, &tags)
	}
	return tags
}

func (s *Skill) SetTags(tags []string) {
	if tags == nil {
		tags = []string{}
	}
	data, _ := json.Marshal(tags)
	s.Tags = datatypes.JSON(data)
}

type SkillCategory struct {
	BaseModel
	Name        string `gorm:"size:80;uniqueIndex;not null" json:"name"`
	Description string `json:"description"`
	Icon        string `gorm:"size:40" json:"icon"`
	Color       string `gorm:"size:80" json:"color"`
}

func (SkillCategory) TableName() string {
	return "skill_categories"
}

// DefaultCategories is the catalogue seeded on a fresh database.
var DefaultCategories = []SkillCategory{
	{Name: "Technology", Description: "Programming, web development, data and IT", Icon: "Code", Color: "bg-blue-500/10 text-blue-600"},
	{Name: "Music", Description: "Instruments, theory, singing and production", Icon: "Music", Color: "bg-purple-500/10 text-purple-600"},
	{Name: "Art & Design", Description: "Drawing, painting, graphic and UI design", Icon: "Palette", Color: "bg-pink-500/10 text-pink-600"},
	{Name: "Languages", Description: "Conversation practice and language tutoring", Icon: "Languages", Color: "bg-green-500/10 text-green-600"},
	{Name: "Fitness", Description: "Training, yoga and sports coaching", Icon: "Dumbbell", Color: "bg-orange-500/10 text-orange-600"},
	{Name: "Photography", Description: "Shooting, editing and lighting", Icon: "Camera", Color: "bg-cyan-500/10 text-cyan-600"},
	{Name: "Cooking", Description: "Cuisine, baking and nutrition", Icon: "ChefHat", Color: "bg-red-500/10 text-red-600"},
	{Name: "Business", Description: "Marketing, finance and entrepreneurship", Icon: "Briefcase", Color: "bg-amber-500/10 text-amber-600"},
	{Name: "Academics", Description: "Maths, science and exam preparation", Icon: "BookOpen", Color: "bg-indigo-500/10 text-indigo-600"},
	{Name: "Crafts", Description: "Woodwork, sewing and handmade goods", Icon: "Layers", Color: "bg-stone-500/10 text-stone-600"},
}
