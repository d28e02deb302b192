package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample users and capability grants for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		db, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: sqlDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		if clearData {
			for _, table := range []string{"access_decisions", "capabilities", "gate_passes", "users"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		password := "password"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

		// the admin enrolls in MFA; OTP code for development is 123456
		otpHash, _ := bcrypt.GenerateFromPassword([]byte("123456"), bcrypt.DefaultCost)

		users := []struct {
			Email      string
			Name       string
			Role       string
			Department string
			YardID     string
			MFA        bool
		}{
			{"dewi@mail.com", "Dewi Admin", "admin", "operations", "", true},
			{"surya@mail.com", "Surya Supervisor", "supervisor", "logistics", "yard-1", false},
			{"bambang@mail.com", "Bambang Operator", "operator", "logistics", "yard-1", false},
		}

		for _, u := range users {
			var exists int
			if err := db.Raw("SELECT 1 FROM users WHERE email = ?", u.Email).Row().Scan(&exists); err == nil {
				fmt.Printf("user %s already exists; will ensure grants\n", u.Email)
				continue
			}
			otp := ""
			if u.MFA {
				otp = string(otpHash)
			}
			if err := db.Exec("INSERT INTO users (email, name, password_hash, role, department, yard_id, mfa_enrolled, otp_hash, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, true, now(), now())",
				u.Email, u.Name, string(hash), u.Role, u.Department, u.YardID, u.MFA, otp).Error; err != nil {
				log.Fatalf("failed to insert user %s: %v", u.Email, err)
			}
			fmt.Println("Seeded user:", u.Email)
		}

		userID := func(email string) int64 {
			var id int64
			if err := db.Raw("SELECT id FROM users WHERE email = ?", email).Row().Scan(&id); err != nil {
				log.Fatalf("failed to lookup user id for %s: %v", email, err)
			}
			return id
		}

		adminID := userID("dewi@mail.com")
		supervisorID := userID("surya@mail.com")
		operatorID := userID("bambang@mail.com")

		type grant struct {
			UserID      int64
			Module      string
			Action      string
			Scope       string
			Conditions  string
			TimeWindow  string
			ContextReqs string
			FieldPerms  string
			Reason      string
		}

		grants := []grant{}

		// admin: everything, everywhere
		for _, module := range []string{"gate_pass", "inspection", "user_management", "reports", "stockyard"} {
			for _, action := range []string{"create", "read", "update", "delete", "approve"} {
				grants = append(grants, grant{UserID: adminID, Module: module, Action: action, Scope: "all", Reason: "administrator"})
			}
		}

		// supervisor: manages their own yard, approval capped and MFA gated
		grants = append(grants,
			grant{UserID: supervisorID, Module: "gate_pass", Action: "read", Scope: "yard_only", Reason: "yard supervision"},
			grant{UserID: supervisorID, Module: "gate_pass", Action: "update", Scope: "yard_only", Reason: "yard supervision"},
			grant{UserID: supervisorID, Module: "gate_pass", Action: "approve", Scope: "yard_only",
				Conditions:  `{"combine_with":"AND","conditions":[{"field":"amount_idr","operator":"<=","value":"500000"}],"error_message":"amount exceeds your approval limit"}`,
				ContextReqs: `{"require_mfa":true}`,
				TimeWindow:  `{"days_of_week":[1,2,3,4,5,6],"time_of_day":{"start":"06:00","end":"22:00"}}`,
				Reason:      "capped approval authority"},
		)

		// operator: issues passes, sees only their own with a trimmed view
		grants = append(grants,
			grant{UserID: operatorID, Module: "gate_pass", Action: "create", Scope: "own_only", Reason: "gate operations"},
			grant{UserID: operatorID, Module: "gate_pass", Action: "read", Scope: "own_only",
				FieldPerms: `[{"module":"gate_pass","action":"read","mode":"whitelist","fields":["pass_number","vehicle_plate","driver_name","status","yard_id","issued_at"]}]`,
				Reason:     "gate operations"},
			grant{UserID: operatorID, Module: "gate_pass", Action: "update", Scope: "own_only",
				FieldPerms: `[{"module":"gate_pass","action":"update","mode":"whitelist","fields":["driver_name","vehicle_plate","notes"]}]`,
				Reason:     "gate operations"},
		)

		for _, g := range grants {
			var exists int
			if err := db.Raw("SELECT 1 FROM capabilities WHERE user_id = ? AND module = ? AND action = ? AND scope = ?",
				g.UserID, g.Module, g.Action, g.Scope).Row().Scan(&exists); err == nil {
				continue
			}
			if err := db.Exec("INSERT INTO capabilities (user_id, module, action, scope, conditions, time_restrictions, context_restrictions, field_permissions, reason, granted_by, created_at, updated_at) VALUES (?, ?, ?, ?, NULLIF(?, '')::jsonb, NULLIF(?, '')::jsonb, NULLIF(?, '')::jsonb, NULLIF(?, '')::jsonb, ?, ?, now(), now())",
				g.UserID, g.Module, g.Action, g.Scope, g.Conditions, g.TimeWindow, g.ContextReqs, g.FieldPerms, g.Reason, adminID).Error; err != nil {
				log.Fatalf("failed to insert grant %s/%s for user %d: %v", g.Module, g.Action, g.UserID, err)
			}
		}

		fmt.Println("Capability grants seeded successfully")
	},
}
