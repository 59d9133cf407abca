package models

import "testing"

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestDeriveScores(t *testing.T) {
	tests := []struct {
		name          string
		research      CompanyResearch
		wantSocial    int
		wantFootprint int
	}{
		{
			name:          "nothing found",
			research:      CompanyResearch{CompanyName: "Ghost LLC"},
			wantSocial:    0,
			wantFootprint: 0,
		},
		{
			name: "website and linkedin only",
			research: CompanyResearch{
				WebsiteURL:  strPtr("https://acme.example"),
				LinkedInURL: strPtr("https://linkedin.com/company/acme"),
			},
			wantSocial:    45,
			wantFootprint: 45,
		},
		{
			name: "large company with full presence",
			research: CompanyResearch{
				WebsiteURL:                strPtr("https://acme.example"),
				LinkedInURL:               strPtr("https://linkedin.com/company/acme"),
				LinkedInEmployeeCount:     intPtr(250),
				TwitterURL:                strPtr("https://x.com/acme"),
				FacebookURL:               strPtr("https://facebook.com/acme"),
				InstagramURL:              strPtr("https://instagram.com/acme"),
				RecentNewsCount:           8,
				BusinessRegistrationFound: true,
			},
			wantSocial:    100,
			wantFootprint: 100,
		},
		{
			name: "news contribution is capped",
			research: CompanyResearch{
				WebsiteURL:      strPtr("https://acme.example"),
				RecentNewsCount: 50,
			},
			wantSocial:    15,
			wantFootprint: 40,
		},
		{
			name: "small linkedin team gets no headcount bonus",
			research: CompanyResearch{
				LinkedInURL:           strPtr("https://linkedin.com/company/tiny"),
				LinkedInEmployeeCount: intPtr(3),
			},
			wantSocial:    30,
			wantFootprint: 20,
		},
		{
			name: "empty strings count as absent",
			research: CompanyResearch{
				WebsiteURL:  strPtr(""),
				LinkedInURL: strPtr(""),
			},
			wantSocial:    0,
			wantFootprint: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cr := tt.research
			cr.DeriveScores()

			if cr.SocialMediaPresenceScore != tt.wantSocial {
				t.Errorf("social score = %d, want %d", cr.SocialMediaPresenceScore, tt.wantSocial)
			}
			if cr.DigitalFootprintScore != tt.wantFootprint {
				t.Errorf("footprint score = %d, want %d", cr.DigitalFootprintScore, tt.wantFootprint)
			}
			if cr.LinkedInVerified != (cr.LinkedInURL != nil && *cr.LinkedInURL != "") {
				t.Error("linkedin_verified should track the URL")
			}
			if cr.WebsiteVerified != (cr.WebsiteURL != nil && *cr.WebsiteURL != "") {
				t.Error("website_verified should track the URL")
			}
		})
	}
}
