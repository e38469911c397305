package main

import (
	"fmt"
	"math/rand"

	"github.com/bloodlink-dev/bloodlink/db"
	"github.com/bloodlink-dev/bloodlink/internal/config"
	"github.com/bloodlink-dev/bloodlink/internal/models"
	"github.com/bloodlink-dev/bloodlink/internal/types"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seeds idempotent demo data: an app-level admin (deliberately not a
// superuser, to keep the two capabilities separate), a hospital user,
// three banks with full inventory, a handful of donors and requests.
func main() {
	cfg := config.Load()

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := db.ConnectDatabase(cfg.DSN()); err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.MigrateDatabase(); err != nil {
		logrus.Fatalf("Failed to migrate database: %v", err)
	}

	if err := db.DB.Transaction(seed); err != nil {
		logrus.Fatalf("Seeding failed: %v", err)
	}

	logrus.Info("Seeding completed.")
}

func seed(tx *gorm.DB) error {
	if _, err := ensureUser(tx, "admin", "admin@example.com", "adminpass", types.RoleAdmin, "", ""); err != nil {
		return err
	}
	if _, err := ensureUser(tx, "city_hospital", "hospital@example.com", "hospitalpass", types.RoleHospital, "", "Dhaka"); err != nil {
		return err
	}

	var banks []models.BloodBank
	if err := tx.Find(&banks).Error; err != nil {
		return err
	}
	if len(banks) == 0 {
		for i := 1; i <= 3; i++ {
			bank := models.BloodBank{
				Name:    fmt.Sprintf("Central Blood Bank %d", i),
				City:    "Dhaka",
				Address: fmt.Sprintf("Address %d", i),
				Contact: "0123456789",
			}
			if err := tx.Create(&bank).Error; err != nil {
				return err
			}
			banks = append(banks, bank)
		}
		logrus.Info("Created blood banks")
	}

	// one inventory row per (bank, group)
	for _, bank := range banks {
		for _, group := range types.BloodGroups {
			var count int64
			if err := tx.Model(&models.BloodInventory{}).
				Where("blood_bank_id = ? AND blood_group = ?", bank.ID, group).
				Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				row := models.BloodInventory{
					BloodBankID: bank.ID,
					BloodGroup:  group,
					Units:       uint(5 + rand.Intn(16)),
				}
				if err := tx.Create(&row).Error; err != nil {
					return err
				}
			}
		}
	}

	var donors []models.User
	if err := tx.Where("role = ?", types.RoleDonor).Find(&donors).Error; err != nil {
		return err
	}
	if len(donors) < 6 {
		for i := 1; i <= 7; i++ {
			username := fmt.Sprintf("donor%d", i)
			donor, err := ensureUser(tx, username, username+"@example.com", "donorpass",
				types.RoleDonor, types.BloodGroups[rand.Intn(len(types.BloodGroups))], "Dhaka")
			if err != nil {
				return err
			}
			donors = append(donors, donor)
		}
		logrus.Info("Created donors")
	}

	var requestCount int64
	if err := tx.Model(&models.DonationRequest{}).Count(&requestCount).Error; err != nil {
		return err
	}
	if requestCount < 5 {
		for _, donor := range donors {
			if requestCount >= 5 {
				break
			}
			var pending int64
			if err := tx.Model(&models.DonationRequest{}).
				Where("requester_id = ? AND status = ?", donor.ID, types.StatusPending).
				Count(&pending).Error; err != nil {
				return err
			}
			if pending > 0 {
				continue
			}
			request := models.DonationRequest{
				RequesterID: donor.ID,
				BloodGroup:  types.BloodGroups[rand.Intn(len(types.BloodGroups))],
				Units:       uint(1 + rand.Intn(3)),
				City:        "Dhaka",
				Status:      types.StatusPending,
			}
			if err := tx.Create(&request).Error; err != nil {
				return err
			}
			requestCount++
		}
		logrus.Info("Created requests")
	}

	return nil
}

func ensureUser(tx *gorm.DB, username, email, password, role, bloodGroup, city string) (models.User, error) {
	var user models.User

	err := tx.Where("username = ?", username).First(&user).Error
	if err == nil {
		return user, nil
	}
	if err != gorm.ErrRecordNotFound {
		return user, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return user, err
	}

	user = models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		BloodGroup:   bloodGroup,
		City:         city,
		Active:       true,
	}
	return user, tx.Create(&user).Error
}
