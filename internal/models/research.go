package models

import (
	"time"

	"github.com/google/uuid"
)

// CompanyResearch holds the digital-footprint research for a client's company.
// At most one record exists per client.
type CompanyResearch struct {
	ID       uuid.UUID `json:"id" db:"id"`
	ClientID uuid.UUID `json:"client_id" db:"client_id"`

	CompanyName string `json:"company_name" db:"company_name"`

	// linkedin
	LinkedInURL           *string `json:"linkedin_url,omitempty" db:"linkedin_url"`
	LinkedInVerified      bool    `json:"linkedin_verified" db:"linkedin_verified"`
	LinkedInEmployeeCount *int    `json:"linkedin_employee_count,omitempty" db:"linkedin_employee_count"`

	// website
	WebsiteURL      *string `json:"website_url,omitempty" db:"website_url"`
	WebsiteVerified bool    `json:"website_verified" db:"website_verified"`

	// social media
	TwitterURL   *string `json:"twitter_url,omitempty" db:"twitter_url"`
	FacebookURL  *string `json:"facebook_url,omitempty" db:"facebook_url"`
	InstagramURL *string `json:"instagram_url,omitempty" db:"instagram_url"`

	// derived scores (0-100)
	SocialMediaPresenceScore int `json:"social_media_presence_score" db:"social_media_presence_score"`
	DigitalFootprintScore    int `json:"digital_footprint_score" db:"digital_footprint_score"`

	BusinessRegistrationFound bool `json:"business_registration_found" db:"business_registration_found"`
	RecentNewsCount           int  `json:"recent_news_count" db:"recent_news_count"`

	LastUpdated time.Time `json:"last_updated" db:"last_updated"`
}

func hasURL(u *string) bool {
	return u != nil && *u != ""
}

// DeriveScores fills the verification booleans and both presence scores from
// the researched URLs, employee count, news count and registration lookup.
func (cr *CompanyResearch) DeriveScores() {
	cr.LinkedInVerified = hasURL(cr.LinkedInURL)
	cr.WebsiteVerified = hasURL(cr.WebsiteURL)

	social := 0
	if hasURL(cr.LinkedInURL) {
		social += 30
	}
	if hasURL(cr.TwitterURL) {
		social += 20
	}
	if hasURL(cr.FacebookURL) {
		social += 20
	}
	if hasURL(cr.InstagramURL) {
		social += 15
	}
	if hasURL(cr.WebsiteURL) {
		social += 15
	}
	cr.SocialMediaPresenceScore = min(social, 100)

	footprint := 0
	if hasURL(cr.WebsiteURL) {
		footprint += 25
	}
	if hasURL(cr.LinkedInURL) {
		footprint += 20
		if cr.LinkedInEmployeeCount != nil && *cr.LinkedInEmployeeCount > 10 {
			footprint += 10
		}
	}
	for _, u := range []*string{cr.TwitterURL, cr.FacebookURL, cr.InstagramURL} {
		if hasURL(u) {
			footprint += 10
		}
	}
	if cr.RecentNewsCount > 0 {
		footprint += min(cr.RecentNewsCount*5, 15)
	}
	if cr.BusinessRegistrationFound {
		footprint += 10
	}
	cr.DigitalFootprintScore = min(footprint, 100)
}
