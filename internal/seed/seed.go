package seed

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/coexhq/coex-backend/pkg/db"
	"github.com/coexhq/coex-backend/pkg/db/models"
	"github.com/coexhq/coex-backend/pkg/enums"
	pkgerrors "github.com/coexhq/coex-backend/pkg/errors"
	"github.com/coexhq/coex-backend/pkg/logger"
	"github.com/coexhq/coex-backend/pkg/security"
)

// Run populates the demo dataset on an empty database. A database that
// already holds users is left untouched, so restarts inside one process
// lifetime are safe.
func Run(ctx context.Context, client *db.Client, logg *logger.Logger) error {
	var count int64
	if err := client.DB().WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count users")
	}
	if count > 0 {
		return nil
	}

	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := seedUsers(tx); err != nil {
			return err
		}
		if err := seedProducts(tx); err != nil {
			return err
		}
		if err := seedOrders(tx); err != nil {
			return err
		}
		if err := seedPayments(tx); err != nil {
			return err
		}
		if err := seedDeliveries(tx); err != nil {
			return err
		}
		return seedNotifications(tx)
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "seed database")
	}

	if logg != nil {
		logg.Info(ctx, "demo dataset seeded")
	}
	return nil
}

func daysAgo(n int) time.Time {
	return time.Now().UTC().Add(-time.Duration(n) * 24 * time.Hour)
}

func daysAhead(n int) time.Time {
	return time.Now().UTC().Add(time.Duration(n) * 24 * time.Hour)
}

func ptr[T any](v T) *T { return &v }

func seedUsers(tx *gorm.DB) error {
	// One hash per demo password; bcrypt is too slow to run per user.
	hashes := map[string]string{}
	for _, password := range []string{"admin123", "dist123", "pharm123"} {
		hash, err := security.HashPassword(password)
		if err != nil {
			return err
		}
		hashes[password] = hash
	}

	users := []models.User{
		{
			Username:     "admin",
			PasswordHash: hashes["admin123"],
			Name:         "Admin User",
			Email:        "admin@coex.com",
			PhoneNumber:  "+962 7 9876 5432",
			Role:         enums.RoleAdmin,
			BusinessName: "COEx Admin",
		},
		{
			Username:     "dist1",
			PasswordHash: hashes["dist123"],
			Name:         "Mohammed Distributor",
			Email:        "dist1@jopharma.com",
			PhoneNumber:  "+962 7 8765 4321",
			Role:         enums.RoleDistributor,
			BusinessName: "JoPharma Distribution",
			BusinessType: "Pharmaceutical Distributor",
		},
		{
			Username:     "dist2",
			PasswordHash: hashes["dist123"],
			Name:         "Sara Distributor",
			Email:        "dist2@arabmed.com",
			PhoneNumber:  "+962 7 8765 1234",
			Role:         enums.RoleDistributor,
			BusinessName: "ArabMed Supplies",
			BusinessType: "Manufacturer & Distributor",
		},
		{
			Username:     "dist3",
			PasswordHash: hashes["dist123"],
			Name:         "Khalid Distributor",
			Email:        "dist3@medeast.com",
			PhoneNumber:  "+962 7 9871 2345",
			Role:         enums.RoleDistributor,
			BusinessName: "MedEast Distribution",
			BusinessType: "Pharmaceutical Distributor",
		},
		{
			Username:     "pharm1",
			PasswordHash: hashes["pharm123"],
			Name:         "Ahmad Pharmacy",
			Email:        "pharm1@alshifa.com",
			PhoneNumber:  "+962 7 1234 5678",
			Role:         enums.RolePharmacy,
			BusinessName: "Al-Shifa Pharmacy",
			Address:      "Amman, Jordan - 7th Circle",
			CreditLimit:  ptr(decimal.NewFromInt(5000)),
		},
		{
			Username:     "pharm2",
			PasswordHash: hashes["pharm123"],
			Name:         "Layla Pharmacy",
			Email:        "pharm2@alhayat.com",
			PhoneNumber:  "+962 7 2345 6789",
			Role:         enums.RolePharmacy,
			BusinessName: "Al-Hayat Medical Center",
			Address:      "Irbid, Jordan - University Street",
			CreditLimit:  ptr(decimal.NewFromInt(3000)),
		},
		{
			Username:     "pharm3",
			PasswordHash: hashes["pharm123"],
			Name:         "Omar Pharmacy",
			Email:        "pharm3@amman.com",
			PhoneNumber:  "+962 7 3456 7890",
			Role:         enums.RolePharmacy,
			BusinessName: "Amman Modern Pharmacy",
			Address:      "Zarqa, Jordan - Main Street",
			CreditLimit:  ptr(decimal.NewFromInt(2500)),
		},
	}
	return tx.Create(&users).Error
}

func seedProducts(tx *gorm.DB) error {
	products := []models.Product{
		{Name: "Amoxicillin 500mg", Description: "Antibiotic capsules for bacterial infections", Price: decimal.NewFromFloat(12.50), Category: "Antibiotics", Manufacturer: "JoPharma", SKU: "AMX500", StockQuantity: 500, DistributorID: 2},
		{Name: "Lisinopril 10mg", Description: "Blood pressure medication for hypertension", Price: decimal.NewFromFloat(8.75), Category: "Cardiovascular", Manufacturer: "MedEast", SKU: "LIS10", StockQuantity: 300, DistributorID: 4},
		{Name: "Metformin 850mg", Description: "Oral diabetes medication for type 2 diabetes", Price: decimal.NewFromFloat(6.90), Category: "Diabetes", Manufacturer: "JoPharma", SKU: "MET850", StockQuantity: 400, DistributorID: 2},
		{Name: "Paracetamol 500mg", Description: "Pain reliever and fever reducer", Price: decimal.NewFromFloat(3.25), Category: "Pain Relief", Manufacturer: "ArabMed", SKU: "PAR500", StockQuantity: 1000, DistributorID: 3},
		{Name: "Salbutamol Inhaler", Description: "Bronchodilator for asthma relief", Price: decimal.NewFromFloat(15.75), Category: "Respiratory", Manufacturer: "MedEast", SKU: "SAL100", StockQuantity: 200, DistributorID: 4},
		{Name: "Omeprazole 20mg", Description: "Proton pump inhibitor for acid reflux and ulcers", Price: decimal.NewFromFloat(9.50), Category: "Gastrointestinal", Manufacturer: "ArabMed", SKU: "OME20", StockQuantity: 350, DistributorID: 3},
		{Name: "Simvastatin 20mg", Description: "Cholesterol-lowering medication", Price: decimal.NewFromFloat(11.25), Category: "Cardiovascular", Manufacturer: "JoPharma", SKU: "SIM20", StockQuantity: 280, DistributorID: 2},
		{Name: "Atorvastatin 10mg", Description: "Potent cholesterol-lowering medication", Price: decimal.NewFromFloat(13.80), Category: "Cardiovascular", Manufacturer: "MedEast", SKU: "ATO10", StockQuantity: 320, DistributorID: 4},
		{Name: "Ciprofloxacin 500mg", Description: "Broad-spectrum antibiotic tablets", Price: decimal.NewFromFloat(14.50), Category: "Antibiotics", Manufacturer: "ArabMed", SKU: "CIP500", StockQuantity: 250, DistributorID: 3},
		{Name: "Diazepam 5mg", Description: "Anti-anxiety and muscle relaxant medication", Price: decimal.NewFromFloat(7.30), Category: "Psychiatric", Manufacturer: "JoPharma", SKU: "DIA5", StockQuantity: 180, DistributorID: 2},
		{Name: "Aspirin 100mg", Description: "Blood thinner for cardiovascular health", Price: decimal.NewFromFloat(4.20), Category: "Cardiovascular", Manufacturer: "ArabMed", SKU: "ASP100", StockQuantity: 600, DistributorID: 3},
		{Name: "Insulin Glargine", Description: "Long-acting insulin for diabetes", Price: decimal.NewFromFloat(45.00), Category: "Diabetes", Manufacturer: "MedEast", SKU: "INS300", StockQuantity: 150, DistributorID: 4},
	}
	return tx.Create(&products).Error
}

func seedOrders(tx *gorm.DB) error {
	orders := []models.Order{
		{
			PharmacyID: 5, PharmacyName: "Al-Shifa Pharmacy",
			DistributorID: 2, DistributorName: "JoPharma Distribution",
			Status: enums.OrderStatusDelivered,
			Items: []models.OrderItem{
				{ProductID: 1, Name: "Amoxicillin 500mg", Quantity: 5, Price: decimal.NewFromFloat(12.50), Total: decimal.NewFromFloat(62.50)},
				{ProductID: 7, Name: "Simvastatin 20mg", Quantity: 3, Price: decimal.NewFromFloat(11.25), Total: decimal.NewFromFloat(33.75)},
			},
			TotalAmount: decimal.NewFromFloat(96.25),
			Notes:       "Need delivery during morning hours",
			CreatedAt:   daysAgo(15),
		},
		{
			PharmacyID: 5, PharmacyName: "Al-Shifa Pharmacy",
			DistributorID: 3, DistributorName: "ArabMed Supplies",
			Status: enums.OrderStatusDelivered,
			Items: []models.OrderItem{
				{ProductID: 4, Name: "Paracetamol 500mg", Quantity: 10, Price: decimal.NewFromFloat(3.25), Total: decimal.NewFromFloat(32.50)},
				{ProductID: 6, Name: "Omeprazole 20mg", Quantity: 4, Price: decimal.NewFromFloat(9.50), Total: decimal.NewFromFloat(38.00)},
			},
			TotalAmount: decimal.NewFromFloat(70.50),
			CreatedAt:   daysAgo(10),
		},
		{
			PharmacyID: 6, PharmacyName: "Al-Hayat Medical Center",
			DistributorID: 4, DistributorName: "MedEast Distribution",
			Status: enums.OrderStatusShipped,
			Items: []models.OrderItem{
				{ProductID: 2, Name: "Lisinopril 10mg", Quantity: 6, Price: decimal.NewFromFloat(8.75), Total: decimal.NewFromFloat(52.50)},
				{ProductID: 5, Name: "Salbutamol Inhaler", Quantity: 3, Price: decimal.NewFromFloat(15.75), Total: decimal.NewFromFloat(47.25)},
			},
			TotalAmount: decimal.NewFromFloat(99.75),
			CreatedAt:   daysAgo(3),
		},
		{
			PharmacyID: 7, PharmacyName: "Amman Modern Pharmacy",
			DistributorID: 2, DistributorName: "JoPharma Distribution",
			Status: enums.OrderStatusPending,
			Items: []models.OrderItem{
				{ProductID: 3, Name: "Metformin 850mg", Quantity: 8, Price: decimal.NewFromFloat(6.90), Total: decimal.NewFromFloat(55.20)},
				{ProductID: 10, Name: "Diazepam 5mg", Quantity: 2, Price: decimal.NewFromFloat(7.30), Total: decimal.NewFromFloat(14.60)},
			},
			TotalAmount: decimal.NewFromFloat(69.80),
			Notes:       "Urgent order - please process ASAP",
			CreatedAt:   daysAgo(1),
		},
		{
			PharmacyID: 5, PharmacyName: "Al-Shifa Pharmacy",
			DistributorID: 4, DistributorName: "MedEast Distribution",
			Status: enums.OrderStatusAccepted,
			Items: []models.OrderItem{
				{ProductID: 8, Name: "Atorvastatin 10mg", Quantity: 4, Price: decimal.NewFromFloat(13.80), Total: decimal.NewFromFloat(55.20)},
				{ProductID: 12, Name: "Insulin Glargine", Quantity: 2, Price: decimal.NewFromFloat(45.00), Total: decimal.NewFromFloat(90.00)},
			},
			TotalAmount: decimal.NewFromFloat(145.20),
			CreatedAt:   daysAgo(2),
		},
	}
	return tx.Create(&orders).Error
}

func seedPayments(tx *gorm.DB) error {
	payments := []models.Payment{
		{
			PharmacyID: 5, PharmacyName: "Al-Shifa Pharmacy",
			DistributorID: 2, DistributorName: "JoPharma Distribution",
			OrderID:        ptr(uint(1)),
			Amount:         decimal.NewFromFloat(96.25),
			Status:         enums.PaymentStatusCleared,
			CheckImagePath: "/uploads/check1.jpg",
			Notes:          "Payment for order #1",
			DueDate:        ptr(daysAgo(5)),
			CreatedAt:      daysAgo(12),
		},
		{
			PharmacyID: 5, PharmacyName: "Al-Shifa Pharmacy",
			DistributorID: 3, DistributorName: "ArabMed Supplies",
			OrderID:        ptr(uint(2)),
			Amount:         decimal.NewFromFloat(70.50),
			Status:         enums.PaymentStatusPending,
			CheckImagePath: "/uploads/check2.jpg",
			DueDate:        ptr(daysAhead(5)),
			CreatedAt:      daysAgo(8),
		},
		{
			PharmacyID: 6, PharmacyName: "Al-Hayat Medical Center",
			DistributorID: 4, DistributorName: "MedEast Distribution",
			Amount:         decimal.NewFromFloat(150.00),
			Status:         enums.PaymentStatusProcessed,
			CheckImagePath: "/uploads/check3.jpg",
			Notes:          "Advance payment",
			DueDate:        ptr(daysAhead(10)),
			CreatedAt:      daysAgo(2),
		},
	}
	return tx.Create(&payments).Error
}

func seedDeliveries(tx *gorm.DB) error {
	deliveries := []models.Delivery{
		{
			OrderID:    1,
			PharmacyID: 5, PharmacyName: "Al-Shifa Pharmacy",
			DistributorID: 2, DistributorName: "JoPharma Distribution",
			Status:                enums.DeliveryStatusDelivered,
			DeliveryType:          enums.DeliveryTypeScheduled,
			ScheduledDate:         ptr(daysAgo(13)),
			OTPCode:               "481275",
			ConfirmationType:      ptr(enums.ConfirmationTypeSignature),
			ConfirmedAt:           ptr(daysAgo(13)),
			ConfirmationImagePath: "/uploads/signature1.jpg",
			CreatedAt:             daysAgo(14),
		},
		{
			OrderID:    2,
			PharmacyID: 5, PharmacyName: "Al-Shifa Pharmacy",
			DistributorID: 3, DistributorName: "ArabMed Supplies",
			Status:                enums.DeliveryStatusDelivered,
			DeliveryType:          enums.DeliveryTypePickup,
			OTPCode:               "917348",
			ConfirmationType:      ptr(enums.ConfirmationTypeSignature),
			ConfirmedAt:           ptr(daysAgo(9)),
			ConfirmationImagePath: "/uploads/signature2.jpg",
			CreatedAt:             daysAgo(10),
		},
		{
			OrderID:    3,
			PharmacyID: 6, PharmacyName: "Al-Hayat Medical Center",
			DistributorID: 4, DistributorName: "MedEast Distribution",
			Status:        enums.DeliveryStatusInTransit,
			DeliveryType:  enums.DeliveryTypeScheduled,
			ScheduledDate: ptr(daysAhead(1)),
			Notes:         "Please call 30 minutes before delivery",
			OTPCode:       "652809",
			CreatedAt:     daysAgo(2),
		},
	}
	return tx.Create(&deliveries).Error
}

func seedNotifications(tx *gorm.DB) error {
	notifications := []models.Notification{
		{
			UserID:    5,
			Title:     "Order Delivered",
			Message:   "Your order #1 has been delivered successfully.",
			Type:      enums.NotificationTypeOrderStatusUpdate,
			Read:      true,
			CreatedAt: daysAgo(13),
		},
		{
			UserID:    2,
			Title:     "New Order Received",
			Message:   "You have received a new order #4 from Amman Modern Pharmacy.",
			Type:      enums.NotificationTypeNewOrder,
			CreatedAt: daysAgo(1),
		},
		{
			UserID:    5,
			Title:     "Payment Due Reminder",
			Message:   "Payment for order #2 is due in 5 days.",
			Type:      enums.NotificationTypePaymentReminder,
			CreatedAt: daysAgo(2),
		},
		{
			UserID:    4,
			Title:     "Order Status Updated",
			Message:   `Order #3 status has been updated to "Shipped".`,
			Type:      enums.NotificationTypeOrderStatusUpdate,
			CreatedAt: daysAgo(3),
		},
	}
	return tx.Create(&notifications).Error
}
