package migrations

import (
	"log"

	"restbar/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Reset drops every table so the schema can be rebuilt from scratch.
func Reset(db *gorm.DB) error {
	log.Println("Dropping existing tables...")
	err := db.Migrator().DropTable(
		&models.SplitItem{},
		&models.SplitAccount{},
		&models.Payment{},
		&models.OrderItem{},
		&models.Order{},
		&models.Account{},
		&models.Table{},
		&models.Zone{},
		&models.Product{},
		&models.Category{},
		&models.Customer{},
		&models.User{},
	)
	if err != nil {
		log.Printf("Warning: Error dropping tables: %v", err)
	}
	return db.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.Category{},
		&models.Product{},
		&models.Zone{},
		&models.Table{},
		&models.Account{},
		&models.Order{},
		&models.OrderItem{},
		&models.Payment{},
		&models.SplitAccount{},
		&models.SplitItem{},
	)
}

// Seed creates the default staff, floor plan and catalog.
func Seed(db *gorm.DB) error {
	log.Println("Seeding default data...")

	staff := []struct {
		name, email, password, role string
	}{
		{"Administrador", "admin@restbar.com", "admin123", "ADMIN"},
		{"Gerente", "manager@restbar.com", "manager123", "MANAGER"},
		{"Mesero", "waiter@restbar.com", "waiter123", "WAITER"},
		{"Cocina", "kitchen@restbar.com", "kitchen123", "KITCHEN"},
		{"Barra", "bar@restbar.com", "bar123", "BAR"},
		{"Caja", "cashier@restbar.com", "cashier123", "CASHIER"},
	}
	for _, s := range staff {
		hash, err := bcrypt.GenerateFromPassword([]byte(s.password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		user := models.User{Name: s.name, Email: s.email, Password: string(hash), Role: s.role, IsActive: true}
		if err := db.Where(models.User{Email: s.email}).FirstOrCreate(&user).Error; err != nil {
			return err
		}
	}

	mainZone := models.Zone{Name: "Salón principal"}
	if err := db.Where(models.Zone{Name: mainZone.Name}).FirstOrCreate(&mainZone).Error; err != nil {
		return err
	}
	terraceZone := models.Zone{Name: "Terraza"}
	if err := db.Where(models.Zone{Name: terraceZone.Name}).FirstOrCreate(&terraceZone).Error; err != nil {
		return err
	}

	for n := 1; n <= 8; n++ {
		zone := mainZone
		if n > 5 {
			zone = terraceZone
		}
		table := models.Table{
			Number:   n,
			Capacity: 4,
			Status:   string(models.TableFree),
			ZoneID:   zone.ID,
			X:        float64((n - 1) % 4 * 120),
			Y:        float64((n - 1) / 4 * 120),
			Active:   true,
		}
		if err := db.Where(models.Table{Number: n, ZoneID: zone.ID}).FirstOrCreate(&table).Error; err != nil {
			return err
		}
	}

	drinks := models.Category{Name: "Bebidas"}
	if err := db.Where(models.Category{Name: drinks.Name}).FirstOrCreate(&drinks).Error; err != nil {
		return err
	}
	food := models.Category{Name: "Platos fuertes"}
	if err := db.Where(models.Category{Name: food.Name}).FirstOrCreate(&food).Error; err != nil {
		return err
	}

	products := []models.Product{
		{Name: "Limonada natural", Price: decimal.NewFromFloat(3.50), Stock: 100, Active: true, CategoryID: drinks.ID},
		{Name: "Cerveza artesanal", Price: decimal.NewFromFloat(5.00), Stock: 80, Active: true, CategoryID: drinks.ID},
		{Name: "Hamburguesa de la casa", Price: decimal.NewFromFloat(8.99), Stock: 50, Active: true, CategoryID: food.ID},
		{Name: "Churrasco", Price: decimal.NewFromFloat(24.99), Stock: 30, Active: true, CategoryID: food.ID},
	}
	for _, p := range products {
		product := p
		if err := db.Where(models.Product{Name: p.Name}).FirstOrCreate(&product).Error; err != nil {
			return err
		}
	}

	log.Println("Seed data ready")
	return nil
}
