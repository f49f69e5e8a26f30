package cmd

import (
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with the permission catalog, an admin account and sample items.`,
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
			log.Fatalf("failed to init orm: %v", err)
		}

		if clearData {
			for _, table := range []string{"permission_grants", "inventory_movements", "items", "permissions", "users"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		permissions := []struct {
			Code     string
			Name     string
			Category string
		}{
			{"inventory.view", "View inventory", "inventory"},
			{"inventory.create", "Create items", "inventory"},
			{"inventory.edit", "Edit items", "inventory"},
			{"inventory.delete", "Delete and restore items", "inventory"},
			{"movements.view", "View movements", "movements"},
			{"movements.create_entry", "Record stock entries", "movements"},
			{"movements.create_exit", "Record stock exits", "movements"},
			{"reports.view", "View reports", "reports"},
			{"reports.export", "Export reports", "reports"},
			{"users.view", "View users", "users"},
			{"users.manage", "Manage users and permissions", "users"},
			{"audit.view", "View permission history", "audit"},
		}

		for _, p := range permissions {
			var exists int
			if err := db.Raw("SELECT 1 FROM permissions WHERE code = ?", p.Code).Row().Scan(&exists); err == nil {
				continue
			}
			if err := db.Exec(
				"INSERT INTO permissions (id, code, name, description, category) VALUES (?, ?, ?, ?, ?)",
				uuid.NewString(), p.Code, p.Name, p.Name, p.Category).Error; err != nil {
				log.Fatalf("failed to insert permission %s: %v", p.Code, err)
			}
			fmt.Println("Seeded permission:", p.Code)
		}

		password := "password"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), cfg.Security.BCryptCost)

		adminEmail := "admin@taller.local"
		var exists int
		if err := db.Raw("SELECT 1 FROM users WHERE email = ? AND deleted_at IS NULL", adminEmail).Row().Scan(&exists); err != nil {
			if err := db.Exec(
				"INSERT INTO users (id, email, name, password_hash, role, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, 'ADMIN', true, now(), now())",
				uuid.NewString(), adminEmail, "Administrator", string(hash)).Error; err != nil {
				log.Fatalf("failed to insert admin user: %v", err)
			}
			fmt.Println("Seeded admin user:", adminEmail)
		}

		clerkEmail := "almacen@taller.local"
		var clerkID string
		if err := db.Raw("SELECT id FROM users WHERE email = ? AND deleted_at IS NULL", clerkEmail).Row().Scan(&clerkID); err != nil {
			clerkID = uuid.NewString()
			if err := db.Exec(
				"INSERT INTO users (id, email, name, password_hash, role, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, 'USER', true, now(), now())",
				clerkID, clerkEmail, "Warehouse Clerk", string(hash)).Error; err != nil {
				log.Fatalf("failed to insert clerk user: %v", err)
			}
			fmt.Println("Seeded clerk user:", clerkEmail)
		}

		// the clerk gets the day-to-day warehouse permissions
		clerkPermissions := []string{
			"inventory.view", "movements.view",
			"movements.create_entry", "movements.create_exit",
		}
		var adminID string
		if err := db.Raw("SELECT id FROM users WHERE email = ?", adminEmail).Row().Scan(&adminID); err != nil {
			log.Fatalf("failed to lookup admin user id: %v", err)
		}
		for _, code := range clerkPermissions {
			var pid string
			if err := db.Raw("SELECT id FROM permissions WHERE code = ?", code).Row().Scan(&pid); err != nil {
				log.Fatalf("permission not found %s: %v", code, err)
			}
			var granted int
			if err := db.Raw(
				"SELECT 1 FROM permission_grants WHERE user_id = ? AND permission_id = ? AND revoked_at IS NULL",
				clerkID, pid).Row().Scan(&granted); err == nil {
				continue
			}
			if err := db.Exec(
				"INSERT INTO permission_grants (id, user_id, permission_id, granted_at, granted_by) VALUES (?, ?, ?, now(), ?)",
				uuid.NewString(), clerkID, pid, adminID).Error; err != nil {
				log.Fatalf("failed to grant %s to clerk: %v", code, err)
			}
		}
		fmt.Println("Granted warehouse permissions to clerk:", clerkEmail)

		items := []struct {
			Type     string
			Code     string
			Name     string
			Category string
			UnitCost string
			MinStock int
			Location string
		}{
			{"PART", "FLT-OIL-001", "Oil filter 1.6L", "filters", "8.50", 10, "A-01"},
			{"PART", "BRK-PAD-014", "Front brake pads", "brakes", "32.00", 6, "B-03"},
			{"PART", "BAT-12V-60A", "Battery 12V 60Ah", "electrical", "95.00", 4, "C-02"},
			{"VEHICLE", "VH-SCOOT-125", "Scooter 125cc", "scooters", "1850.00", 1, "SHOWROOM"},
		}

		for _, it := range items {
			var exists int
			if err := db.Raw("SELECT 1 FROM items WHERE code = ? AND deleted_at IS NULL", it.Code).Row().Scan(&exists); err == nil {
				continue
			}
			if err := db.Exec(
				`INSERT INTO items (id, type, code, name, category, unit_cost, current_stock, min_stock, location, is_active, created_at, updated_at, created_by)
				 VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?, true, now(), now(), ?)`,
				uuid.NewString(), it.Type, it.Code, it.Name, it.Category,
				it.UnitCost, it.MinStock, it.Location, adminID).Error; err != nil {
				log.Fatalf("failed to insert item %s: %v", it.Code, err)
			}
			fmt.Println("Seeded item:", it.Code)
		}

		fmt.Println("Seeding finished")
	},
}
