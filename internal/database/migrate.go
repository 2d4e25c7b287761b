package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied in order.  There are no foreign key cascades; the
// service keeps referential integrity inside its units of work.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
  id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
  full_name     VARCHAR(120) NOT NULL,
  email         VARCHAR(190) NOT NULL,
  password_hash VARCHAR(255) NOT NULL,
  role          ENUM('student','admin') NOT NULL DEFAULT 'student',
  phone_number  VARCHAR(32) NULL,
  department    VARCHAR(120) NULL,
  protected     BOOLEAN NOT NULL DEFAULT FALSE,
  created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE KEY uq_users_email (email)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
  id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
  user_id    BIGINT UNSIGNED NOT NULL,
  token_hash CHAR(64) NOT NULL,
  expires_at DATETIME NOT NULL,
  revoked_at DATETIME NULL,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE KEY uq_refresh_hash (token_hash),
  KEY idx_refresh_user (user_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS resources (
  id             BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
  owner_id       BIGINT UNSIGNED NOT NULL,
  title          VARCHAR(200) NOT NULL,
  category       VARCHAR(40) NOT NULL,
  item_condition VARCHAR(40) NOT NULL,
  ownership_type ENUM('sell','share') NOT NULL,
  price          DECIMAL(10,2) NOT NULL DEFAULT 0,
  description    TEXT NOT NULL,
  status         ENUM('available','requested') NOT NULL DEFAULT 'available',
  created_at     DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
  KEY idx_resources_status_created (status, created_at),
  KEY idx_resources_owner (owner_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS requests (
  id           BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
  resource_id  BIGINT UNSIGNED NOT NULL,
  requester_id BIGINT UNSIGNED NOT NULL,
  request_type ENUM('sell','share') NOT NULL,
  phone_number VARCHAR(32) NOT NULL,
  department   VARCHAR(120) NOT NULL,
  status       ENUM('pending','accepted','declined') NOT NULL DEFAULT 'pending',
  created_at   DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
  KEY idx_requests_resource (resource_id),
  KEY idx_requests_requester (requester_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS notifications (
  id                   BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
  user_id              BIGINT UNSIGNED NOT NULL,
  type                 ENUM('request','system') NOT NULL,
  request_id           BIGINT UNSIGNED NULL,
  listing_title        VARCHAR(200) NOT NULL DEFAULT '',
  requester_name       VARCHAR(120) NOT NULL DEFAULT '',
  requester_phone      VARCHAR(32) NOT NULL DEFAULT '',
  requester_department VARCHAR(120) NOT NULL DEFAULT '',
  message              TEXT NOT NULL,
  status               VARCHAR(16) NOT NULL DEFAULT '',
  is_read              BOOLEAN NOT NULL DEFAULT FALSE,
  created_at           DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
  KEY idx_notifications_user (user_id, is_read),
  KEY idx_notifications_request (request_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS favorites (
  user_id     BIGINT UNSIGNED NOT NULL,
  resource_id BIGINT UNSIGNED NOT NULL,
  created_at  DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
  PRIMARY KEY (user_id, resource_id),
  KEY idx_favorites_resource (resource_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates any missing table.  It is safe to run on every start.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
