package db

import (
	"fmt"

	"gorm.io/gorm"
)

// SQLiteSchema mirrors pkg/migrate/migrations using sqlite types. It backs the
// sqlite driver in local development and the in-memory test databases.
// Every CHECK constraint is carried over, and so are the foreign keys between
// orders, commissions and shops. References to users and products.shop_id
// are left out so repository tests can seed rows without their parents.
var SQLiteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'buyer' CHECK (role IN ('buyer', 'vendor', 'admin')),
		last_login_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS shops (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		shop_name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		categories TEXT NOT NULL DEFAULT '{}',
		country TEXT NOT NULL DEFAULT 'India',
		logo_url TEXT NOT NULL DEFAULT '',
		banner_url TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		contact_email TEXT NOT NULL DEFAULT '',
		contact_phone TEXT NOT NULL DEFAULT '',
		average_rating REAL NOT NULL DEFAULT 0,
		total_ratings INTEGER NOT NULL DEFAULT 0,
		onboarding_complete BOOLEAN NOT NULL DEFAULT 0,
		total_earnings NUMERIC NOT NULL DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME,
		UNIQUE (owner_id, shop_name)
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		shop_id TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		price NUMERIC NOT NULL CHECK (price >= 0),
		stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
		image_url TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		average_rating REAL NOT NULL DEFAULT 0,
		total_ratings INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS cart_items (
		id TEXT PRIMARY KEY,
		buyer_id TEXT NOT NULL,
		product_id TEXT NOT NULL,
		quantity INTEGER NOT NULL DEFAULT 1 CHECK (quantity >= 1),
		price_at_add NUMERIC NOT NULL,
		created_at DATETIME,
		updated_at DATETIME,
		UNIQUE (buyer_id, product_id)
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id TEXT PRIMARY KEY,
		buyer_id TEXT NOT NULL,
		shop_id TEXT NOT NULL REFERENCES shops(id),
		shipping_address TEXT NOT NULL,
		total_amount NUMERIC NOT NULL,
		vendor_earning NUMERIC NOT NULL,
		admin_commission NUMERIC NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending'
			CHECK (status IN ('pending', 'confirmed', 'shipped', 'delivered', 'cancelled')),
		created_at DATETIME,
		updated_at DATETIME,
		CONSTRAINT orders_split_sums
			CHECK (ROUND(vendor_earning + admin_commission, 2) = ROUND(total_amount, 2))
	)`,
	`CREATE TABLE IF NOT EXISTS order_line_items (
		id TEXT PRIMARY KEY,
		order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		product_id TEXT NOT NULL,
		title TEXT NOT NULL,
		quantity INTEGER NOT NULL CHECK (quantity >= 1),
		unit_price NUMERIC NOT NULL,
		created_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS commissions (
		id TEXT PRIMARY KEY,
		order_id TEXT NOT NULL UNIQUE REFERENCES orders(id),
		shop_id TEXT NOT NULL REFERENCES shops(id),
		total_amount NUMERIC NOT NULL,
		vendor_earning NUMERIC NOT NULL,
		commission_amount NUMERIC NOT NULL,
		rate NUMERIC NOT NULL,
		created_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS ratings (
		id TEXT PRIMARY KEY,
		product_id TEXT NOT NULL,
		buyer_id TEXT NOT NULL,
		order_id TEXT NOT NULL,
		rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
		review TEXT NOT NULL DEFAULT '',
		created_at DATETIME,
		UNIQUE (product_id, buyer_id)
	)`,
	`CREATE TABLE IF NOT EXISTS disputes (
		id TEXT PRIMARY KEY,
		order_id TEXT NOT NULL,
		buyer_id TEXT NOT NULL,
		shop_id TEXT NOT NULL,
		reason TEXT NOT NULL
			CHECK (reason IN ('not_received', 'damaged_product', 'wrong_item', 'refund_request', 'other')),
		description TEXT NOT NULL,
		images TEXT NOT NULL DEFAULT '{}',
		status TEXT NOT NULL DEFAULT 'open'
			CHECK (status IN ('open', 'vendor-responded', 'under-review', 'resolved', 'rejected')),
		admin_notes TEXT NOT NULL DEFAULT '',
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS dispute_messages (
		id TEXT PRIMARY KEY,
		dispute_id TEXT NOT NULL REFERENCES disputes(id) ON DELETE CASCADE,
		sender_role TEXT NOT NULL CHECK (sender_role IN ('buyer', 'vendor', 'admin')),
		sender_id TEXT NOT NULL,
		message TEXT NOT NULL,
		created_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS contact_messages (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		subject TEXT NOT NULL,
		message TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'new' CHECK (status IN ('new', 'read', 'replied', 'archived')),
		admin_notes TEXT NOT NULL DEFAULT '',
		replied_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	)`,
}

// ApplySQLiteSchema creates every table on an empty sqlite database.
func ApplySQLiteSchema(conn *gorm.DB) error {
	for _, stmt := range SQLiteSchema {
		if err := conn.Exec(stmt).Error; err != nil {
			return fmt.Errorf("apply sqlite schema: %w", err)
		}
	}
	return nil
}
