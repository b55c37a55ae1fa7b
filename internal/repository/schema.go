package repository

// Schema definitions for the Heron database.
// Compatible with both SQLite and PostgreSQL.

const schemaApplications = `
CREATE TABLE IF NOT EXISTS applications (
    id TEXT PRIMARY KEY,
    tenant_id TEXT NOT NULL,
    applicant_id TEXT NOT NULL,
    business_segment TEXT NOT NULL,
    msme_category TEXT NOT NULL,
    features TEXT NOT NULL,
    financials TEXT NOT NULL,
    external_probability REAL NOT NULL,
    alpha REAL,
    created_at TIMESTAMP NOT NULL,
    metadata TEXT
);

CREATE INDEX IF NOT EXISTS idx_applications_tenant ON applications(tenant_id);
CREATE INDEX IF NOT EXISTS idx_applications_applicant ON applications(tenant_id, applicant_id);
CREATE INDEX IF NOT EXISTS idx_applications_created ON applications(tenant_id, created_at);
`

const schemaDecisions = `
CREATE TABLE IF NOT EXISTS decisions (
    id TEXT PRIMARY KEY,
    tenant_id TEXT NOT NULL,
    application_id TEXT NOT NULL,
    applicant_id TEXT NOT NULL,
    timestamp TIMESTAMP NOT NULL,
    final_score INTEGER NOT NULL,
    risk_tier TEXT NOT NULL,
    eligible INTEGER NOT NULL,
    recommended_limit REAL NOT NULL,
    score_result TEXT NOT NULL,
    limit_result TEXT NOT NULL,
    policy_results TEXT,
    metadata TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_decisions_tenant ON decisions(tenant_id);
CREATE INDEX IF NOT EXISTS idx_decisions_application ON decisions(tenant_id, application_id);
CREATE INDEX IF NOT EXISTS idx_decisions_applicant ON decisions(tenant_id, applicant_id);
CREATE INDEX IF NOT EXISTS idx_decisions_tier ON decisions(tenant_id, risk_tier);
CREATE INDEX IF NOT EXISTS idx_decisions_timestamp ON decisions(tenant_id, timestamp);
`

const schemaPolicyRules = `
CREATE TABLE IF NOT EXISTS policy_rules (
    id TEXT NOT NULL,
    tenant_id TEXT NOT NULL,
    name TEXT NOT NULL,
    description TEXT,
    version TEXT NOT NULL,
    expression TEXT NOT NULL,
    severity TEXT NOT NULL,
    code TEXT,
    enabled INTEGER NOT NULL DEFAULT 1,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL,
    PRIMARY KEY (id, tenant_id, version)
);

CREATE INDEX IF NOT EXISTS idx_policy_rules_tenant ON policy_rules(tenant_id);
CREATE INDEX IF NOT EXISTS idx_policy_rules_enabled ON policy_rules(tenant_id, enabled);
`

// AllSchemas returns all schema statements in order.
func AllSchemas() []string {
	return []string{
		schemaApplications,
		schemaDecisions,
		schemaPolicyRules,
	}
}
