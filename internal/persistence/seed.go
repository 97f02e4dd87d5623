package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/autopulse/crm-service/internal/config"
	"github.com/autopulse/crm-service/internal/domain"
)

type seedUser struct {
	id, name, email string
	role            domain.Role
}

type seedLead struct {
	id, name, phone, email, source, vehicle, budget string
	status                                          domain.LeadStatus
	assignedTo                                      string
	score                                           domain.Score
	followUpInDays                                  *int
	lastActivityDaysAgo                             *int
}

type seedActivity struct {
	id, leadID  string
	kind        domain.ActivityType
	description string
	performedBy string
	daysAgo     int
}

func intPtr(v int) *int { return &v }

var seedUsers = []seedUser{
	{"u1", "Priya Sharma", "priya@hsrmotors.in", domain.RoleSales},
	{"u2", "Rohan Das", "rohan@hsrmotors.in", domain.RoleSales},
	{"u3", "Sneha Kapoor", "sneha@hsrmotors.in", domain.RoleSales},
	{"u4", "Arjun P.", "arjun2@hsrmotors.in", domain.RoleSales},
	{"u5", "Neha Mehta", "neha@hsrmotors.in", domain.RoleSales},
	{"u6", "Arjun Kumar", "manager@hsrmotors.in", domain.RoleManager},
}

// Dates are relative to seed time so the demo scores stay meaningful.
var seedLeads = []seedLead{
	{"l1", "Rahul Mehta", "+91 98765 43210", "rahul@gmail.com", "Facebook", "Hyundai Creta SX(O)", "₹12L–₹15L", domain.StatusQualified, "u1", domain.ScoreHot, intPtr(1), intPtr(0)},
	{"l2", "Anjali Singh", "+91 87654 32109", "anjali@gmail.com", "Google", "Venue S+", "₹9L–₹12L", domain.StatusNew, "u2", domain.ScoreWarm, intPtr(2), intPtr(1)},
	{"l3", "Karan Verma", "+91 76543 21098", "karan@gmail.com", "Website", "Alcazar Platinum", "₹19L–₹22L", domain.StatusContacted, "u1", domain.ScoreHot, intPtr(1), intPtr(3)},
	{"l4", "Meera Nair", "+91 65432 10987", "meera@gmail.com", "Referral", "i20 Asta", "₹10L", domain.StatusConverted, "u3", domain.ScoreWarm, nil, intPtr(5)},
	{"l5", "Vikram Joshi", "+91 54321 09876", "vikram@gmail.com", "Offline", "Tucson AWD", "₹30L", domain.StatusNotInterested, "u2", domain.ScoreCold, nil, intPtr(6)},
	{"l6", "Priya Patel", "+91 43210 98765", "priyap@gmail.com", "Twitter", "Exter SX", "₹8L–₹10L", domain.StatusNew, "u1", domain.ScoreWarm, intPtr(2), intPtr(1)},
	{"l7", "Suresh Kumar", "+91 32109 87654", "suresh@gmail.com", "Google", "Kona Electric", "₹24L–₹26L", domain.StatusQualified, "u3", domain.ScoreHot, intPtr(3), intPtr(1)},
	{"l8", "Lakshmi Nair", "+91 21098 76543", "lakshmi@gmail.com", "Facebook", "Creta N Line", "₹14L–₹16L", domain.StatusContacted, "u1", domain.ScoreWarm, intPtr(1), intPtr(2)},
	{"l9", "Dev Rathi", "+91 11223 44556", "dev@gmail.com", "Website", "Grand i10 NIOS", "₹7L–₹9L", domain.StatusNew, "u3", domain.ScoreCold, intPtr(3), intPtr(5)},
	{"l10", "Anita Bose", "+91 22334 55667", "anita@gmail.com", "Referral", "Tucson 2.0 DSL", "₹28L–₹32L", domain.StatusNegotiation, "u2", domain.ScoreHot, intPtr(2), intPtr(1)},
	{"l11", "Nikhil Roy", "+91 33445 66778", "nikhil@gmail.com", "Google", "Creta SX", "₹13L–₹15L", domain.StatusNegotiation, "u1", domain.ScoreWarm, intPtr(2), intPtr(2)},
	{"l12", "Sanjay Gupta", "+91 44556 77889", "sanjay@gmail.com", "Facebook", "Creta E+", "₹11L", domain.StatusConverted, "u1", domain.ScoreWarm, nil, intPtr(7)},
	{"l13", "Ravi Sharma", "+91 55667 88990", "ravi@gmail.com", "Offline", "Venue S (D)", "₹10L–₹12L", domain.StatusContacted, "u2", domain.ScoreWarm, intPtr(2), intPtr(1)},
	{"l14", "Pooja Iyer", "+91 66778 99001", "pooja@gmail.com", "Website", "Ioniq 5", "₹44L–₹46L", domain.StatusNew, "u4", domain.ScoreWarm, intPtr(4), intPtr(1)},
	{"l15", "Amit Chaudhary", "+91 77889 00112", "amit@gmail.com", "Google", "Creta SX(O) Diesel", "₹17L–₹19L", domain.StatusQualified, "u5", domain.ScoreHot, intPtr(2), intPtr(0)},
}

var seedActivities = []seedActivity{
	{"a1", "l1", domain.ActivitySystem, "Lead auto-assigned to Priya Sharma (lowest workload).", domain.SystemPerformer, 4},
	{"a2", "l1", domain.ActivitySystem, "New lead submitted via Facebook Lead Ads campaign.", domain.SystemPerformer, 4},
	{"a3", "l1", domain.ActivityCall, "Initial contact. Interested in SUV under ₹15L. Prefers Titan Grey. Very positive.", "Priya Sharma", 3},
	{"a4", "l1", domain.ActivityFollowup, "Sent brochure and EMI calculator via WhatsApp.", "Priya Sharma", 2},
	{"a5", "l1", domain.ActivityStatus, "Status changed: Contacted → Qualified", domain.SystemPerformer, 2},
	{"a6", "l1", domain.ActivityNote, "Customer prefers Titan Grey color. Needs financing. Very interested.", "Priya Sharma", 1},
	{"a7", "l1", domain.ActivityCall, "Duration: 4 min 32 sec. Discussed Creta SX(O) trim options and timeline.", "Priya Sharma", 0},
}

// SeedDemoData populates an empty database with the dealership demo
// dataset. A database that already holds users is left untouched.
func SeedDemoData(ctx context.Context, db *sql.DB, authCfg config.AuthConfig, logger *zap.Logger) error {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(authCfg.SeedPassword), authCfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}

	now := time.Now().UTC()
	dateAgo := func(days int) string {
		return now.AddDate(0, 0, -days).Format(domain.DateLayout)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	for _, u := range seedUsers {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO users (id, name, email, password_hash, role, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
			u.id, u.name, u.email, string(hash), u.role, now.Format(time.RFC3339),
		); err != nil {
			return fmt.Errorf("seed user %s: %w", u.id, err)
		}
	}

	for _, l := range seedLeads {
		var followUp, lastActivity *string
		if l.followUpInDays != nil {
			v := now.AddDate(0, 0, *l.followUpInDays).Format(domain.DateLayout)
			followUp = &v
		}
		if l.lastActivityDaysAgo != nil {
			v := dateAgo(*l.lastActivityDaysAgo)
			lastActivity = &v
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO leads (id, name, phone, email, source, vehicle_interested, budget, status, assigned_to, score, follow_up_date, last_activity_date, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			l.id, l.name, l.phone, l.email, l.source, l.vehicle, l.budget, l.status, l.assignedTo, l.score,
			followUp, lastActivity, now.Format(time.RFC3339), now.Format(time.RFC3339),
		); err != nil {
			return fmt.Errorf("seed lead %s: %w", l.id, err)
		}
	}

	for _, a := range seedActivities {
		createdAt := now.AddDate(0, 0, -a.daysAgo).Format(time.RFC3339)
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO activities (id, lead_id, type, description, performed_by, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
			a.id, a.leadID, a.kind, a.description, a.performedBy, createdAt,
		); err != nil {
			return fmt.Errorf("seed activity %s: %w", a.id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	logger.Info("database seeded with demo data",
		zap.Int("users", len(seedUsers)),
		zap.Int("leads", len(seedLeads)),
		zap.Int("activities", len(seedActivities)),
	)
	return nil
}
