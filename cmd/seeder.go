package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		db, err := initGormDB(sqlDB)
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		if clearData {
			for _, table := range []string{"payments", "bills", "tenants", "rooms", "floors", "properties", "user_permissions"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear table %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		password := "password"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

		adminEmail := "admin@payup.co.ke"
		seedUser(db, adminEmail, "PayUp Admin", string(hash))

		landlordEmail := "ngeche@payup.co.ke"
		seedUser(db, landlordEmail, "Ngeche Moris", string(hash))

		permissions := []struct {
			Name string
			Desc string
		}{
			{"admin", "full administrator"},
			{"manage_properties", "Can manage properties, rooms and tenants"},
			{"manage_bills", "Can create and delete bills"},
			{"initiate_payments", "Can trigger STK push payment requests"},
			{"view_payments", "Can view tenant payment history"},
		}

		for _, p := range permissions {
			var pid int64
			row := db.Raw("SELECT id FROM permissions WHERE name = ?", p.Name).Row()
			if err := row.Scan(&pid); err != nil {
				if err := db.Exec("INSERT INTO permissions (name, description, created_at) VALUES (?, ?, now())", p.Name, p.Desc).Error; err != nil {
					log.Fatalf("failed to insert permission %s: %v", p.Name, err)
				}
			}
		}

		grantPermissions(db, adminEmail, []string{"admin"})
		grantPermissions(db, landlordEmail, []string{"manage_properties", "manage_bills", "initiate_payments", "view_payments"})

		seedDemoProperty(db, landlordEmail)

		fmt.Println("Seeding complete")
	},
}

func seedUser(db *gorm.DB, email, name, passwordHash string) {
	var exists int
	row := db.Raw("SELECT 1 FROM users WHERE email = ?", email).Row()
	if err := row.Scan(&exists); err == nil {
		fmt.Printf("user %s already exists; will ensure permissions\n", email)
		return
	}

	if err := db.Exec("INSERT INTO users (email, name, password_hash, is_active, created_at, updated_at) VALUES (?, ?, ?, true, now(), now())", email, name, passwordHash).Error; err != nil {
		log.Fatalf("failed to insert user %s: %v", email, err)
	}
	fmt.Println("Seeded user:", email)
}

func grantPermissions(db *gorm.DB, email string, perms []string) {
	var userID int64
	if err := db.Raw("SELECT id FROM users WHERE email = ?", email).Row().Scan(&userID); err != nil {
		log.Fatalf("failed to lookup user id for %s: %v", email, err)
	}

	for _, permName := range perms {
		var pid int64
		if err := db.Raw("SELECT id FROM permissions WHERE name = ?", permName).Row().Scan(&pid); err != nil {
			log.Fatalf("permission not found %s: %v", permName, err)
		}

		var exists int
		if err := db.Raw("SELECT 1 FROM user_permissions WHERE user_id = ? AND permission_id = ?", userID, pid).Row().Scan(&exists); err == nil {
			continue
		}

		if err := db.Exec("INSERT INTO user_permissions (user_id, permission_id, granted_by, created_at) VALUES (?, ?, NULL, now())", userID, pid).Error; err != nil {
			log.Fatalf("failed to grant permission %s to %s: %v", permName, email, err)
		}
	}

	fmt.Printf("Granted permissions to %s: %v\n", email, perms)
}

func seedDemoProperty(db *gorm.DB, landlordEmail string) {
	var landlordID int64
	if err := db.Raw("SELECT id FROM users WHERE email = ?", landlordEmail).Row().Scan(&landlordID); err != nil {
		log.Fatalf("failed to lookup landlord id: %v", err)
	}

	var exists int
	if err := db.Raw("SELECT 1 FROM properties WHERE name = ?", "Greenview Apartments").Row().Scan(&exists); err == nil {
		fmt.Println("demo property already exists")
		return
	}

	if err := db.Exec("INSERT INTO properties (landlord_id, name, location, created_at, updated_at) VALUES (?, ?, ?, now(), now())", landlordID, "Greenview Apartments", "Ngong Road, Nairobi").Error; err != nil {
		log.Fatalf("failed to insert demo property: %v", err)
	}

	var propertyID int64
	if err := db.Raw("SELECT id FROM properties WHERE name = ?", "Greenview Apartments").Row().Scan(&propertyID); err != nil {
		log.Fatalf("failed to lookup demo property id: %v", err)
	}

	for floor := 1; floor <= 2; floor++ {
		if err := db.Exec("INSERT INTO floors (property_id, number, name) VALUES (?, ?, ?)", propertyID, floor, fmt.Sprintf("Floor %d", floor)).Error; err != nil {
			log.Fatalf("failed to insert floor %d: %v", floor, err)
		}

		var floorID int64
		if err := db.Raw("SELECT id FROM floors WHERE property_id = ? AND number = ?", propertyID, floor).Row().Scan(&floorID); err != nil {
			log.Fatalf("failed to lookup floor id: %v", err)
		}

		for room := 1; room <= 4; room++ {
			number := fmt.Sprintf("%c%d", 'A'+floor-1, room)
			if err := db.Exec("INSERT INTO rooms (floor_id, number, room_type, occupied) VALUES (?, ?, ?, false)", floorID, number, "bedsitter").Error; err != nil {
				log.Fatalf("failed to insert room %s: %v", number, err)
			}
		}
	}

	tenants := []struct {
		Name  string
		Phone string
	}{
		{"Wanjiku Kamau", "254712345678"},
		{"Brian Otieno", "254701234567"},
	}

	for _, t := range tenants {
		if err := db.Exec("INSERT INTO tenants (name, email, phone, balance, created_at, updated_at) VALUES (?, '', ?, 5000, now(), now())", t.Name, t.Phone).Error; err != nil {
			log.Fatalf("failed to insert tenant %s: %v", t.Name, err)
		}
	}

	fmt.Println("Seeded demo property, rooms and tenants")
}
