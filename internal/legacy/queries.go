package legacy

import "github.com/mfiorillo/ledgerlens/internal/database"

// query is one catalog entry. Statements are written in MySQL dialect
// with ? placeholders; a postgres variant is only present when the
// statement uses MySQL-specific functions, otherwise the placeholders
// are rebound and the text shared.
type query struct {
	mysql    string
	postgres string
}

func (q query) text(d database.Dialect) string {
	if d == database.DialectPostgres && q.postgres != "" {
		return q.postgres
	}
	return database.Rebind(d, q.mysql)
}

// queryHealthProbe is the trivial statement used by the health check.
var queryHealthProbe = query{mysql: `SELECT 1`}

// queryServerVersion fetches the server version string.
var queryServerVersion = query{
	mysql:    `SELECT VERSION() as version`,
	postgres: `SELECT version() as version`,
}

// queryMisappliedCustomers flags customers whose payments were applied
// to a future lesson while older unpaid lessons existed. The 14-day
// gap is the heuristic threshold inherited from the billing team.
var queryMisappliedCustomers = query{
	mysql: `
	SELECT DISTINCT
		p.user_id,
		up.firstname,
		up.lastname,
		COUNT(DISTINCT p.id) as num_suspicious_payments
	FROM
		payment p
		JOIN lesson_payment lp ON p.id = lp.paymentId
		JOIN lesson l_paid ON lp.lessonId = l_paid.id
		JOIN enrolment e ON l_paid.courseId = e.courseId
		JOIN student s ON e.studentId = s.id
		JOIN user_profile up ON p.user_id = up.user_id
	WHERE
		s.customer_id = p.user_id
		AND EXISTS (
			SELECT 1
			FROM lesson l_unpaid
			JOIN enrolment e_unpaid ON l_unpaid.courseId = e_unpaid.courseId
			JOIN student s_unpaid ON e_unpaid.studentId = s_unpaid.id
			WHERE
				s_unpaid.customer_id = p.user_id
				AND l_unpaid.paidStatus = 0
				AND l_unpaid.date < l_paid.date
				AND l_unpaid.dueDate <= l_paid.date
				AND DATEDIFF(l_paid.date, l_unpaid.date) > 14
				AND l_paid.date > p.date
		)
	GROUP BY
		p.user_id,
		up.firstname,
		up.lastname
	ORDER BY
		num_suspicious_payments DESC
	LIMIT 100`,
	postgres: `
	SELECT DISTINCT
		p.user_id,
		up.firstname,
		up.lastname,
		COUNT(DISTINCT p.id) as num_suspicious_payments
	FROM
		payment p
		JOIN lesson_payment lp ON p.id = lp.paymentId
		JOIN lesson l_paid ON lp.lessonId = l_paid.id
		JOIN enrolment e ON l_paid.courseId = e.courseId
		JOIN student s ON e.studentId = s.id
		JOIN user_profile up ON p.user_id = up.user_id
	WHERE
		s.customer_id = p.user_id
		AND EXISTS (
			SELECT 1
			FROM lesson l_unpaid
			JOIN enrolment e_unpaid ON l_unpaid.courseId = e_unpaid.courseId
			JOIN student s_unpaid ON e_unpaid.studentId = s_unpaid.id
			WHERE
				s_unpaid.customer_id = p.user_id
				AND l_unpaid.paidStatus = 0
				AND l_unpaid.date < l_paid.date
				AND l_unpaid.dueDate <= l_paid.date
				AND l_paid.date::date - l_unpaid.date::date > 14
				AND l_paid.date > p.date
		)
	GROUP BY
		p.user_id,
		up.firstname,
		up.lastname
	ORDER BY
		num_suspicious_payments DESC
	LIMIT 100`,
}

// queryCustomerDetails returns one row per customer with name, email,
// balance and the dominant payment frequency across their enrolments.
var queryCustomerDetails = query{
	mysql: `
	SELECT
		u.id as user_id,
		CONCAT(up.firstname, ' ', up.lastname) as customer_name,
		ue.email,
		ca.balance,
		(
			SELECT pf.name
			FROM enrolment e
			JOIN payment_frequency pf ON e.paymentFrequencyId = pf.id
			JOIN student s ON e.studentId = s.id
			WHERE s.customer_id = u.id
			GROUP BY pf.name
			ORDER BY COUNT(*) DESC
			LIMIT 1
		) as payment_frequency
	FROM
		user u
		JOIN user_profile up ON u.id = up.user_id
		LEFT JOIN user_email ue ON u.id = ue.user_id
		LEFT JOIN customer_account ca ON u.id = ca.user_id
	WHERE
		u.id = ?
	LIMIT 1`,
}

var queryCustomerPayments = query{
	mysql: `
	SELECT
		p.id as payment_id,
		p.date as payment_date,
		p.amount,
		p.balance,
		p.status,
		pm.name as payment_method
	FROM
		payment p
		LEFT JOIN payment_method pm ON p.payment_method_id = pm.id
	WHERE
		p.user_id = ?
	ORDER BY
		p.date DESC
	LIMIT 100`,
}

var queryPaymentDetails = query{
	mysql: `
	SELECT
		p.id as payment_id,
		p.user_id,
		p.date as payment_date,
		p.amount,
		p.balance,
		p.status,
		pm.name as payment_method,
		CONCAT(up.firstname, ' ', up.lastname) as customer_name
	FROM
		payment p
		LEFT JOIN payment_method pm ON p.payment_method_id = pm.id
		LEFT JOIN user_profile up ON p.user_id = up.user_id
	WHERE
		p.id = ?
	LIMIT 1`,
}

var queryRelatedEnrolment = query{
	mysql: `
	SELECT
		e.id as enrolment_id,
		e.paymentFrequencyId,
		pf.name as payment_frequency,
		e.startDateTime,
		e.endDateTime,
		e.isAutoRenew,
		s.first_name as student_first_name,
		s.last_name as student_last_name,
		s.id as student_id,
		c.name as course_name
	FROM
		lesson_payment lp
		JOIN lesson l ON lp.lessonId = l.id
		JOIN enrolment e ON lp.enrolmentId = e.id
		JOIN student s ON e.studentId = s.id
		JOIN course c ON e.courseId = c.id
		JOIN payment_frequency pf ON e.paymentFrequencyId = pf.id
	WHERE
		lp.paymentId = ?
	GROUP BY
		e.id
	LIMIT 1`,
}

var queryPaymentApplications = query{
	mysql: `
	SELECT
		l.id as lesson_id,
		l.date as lesson_date,
		l.dueDate as lesson_due_date,
		l.total as lesson_amount,
		lp.amount as applied_amount,
		e.id as enrolment_id,
		s.first_name as student_first_name,
		s.last_name as student_last_name,
		s.id as student_id,
		p.date as payment_date,
		CASE WHEN l.date > p.date THEN 1 ELSE 0 END as is_future_lesson
	FROM
		lesson_payment lp
		JOIN lesson l ON lp.lessonId = l.id
		JOIN enrolment e ON lp.enrolmentId = e.id
		JOIN student s ON e.studentId = s.id
		JOIN payment p ON lp.paymentId = p.id
	WHERE
		lp.paymentId = ?
	ORDER BY
		l.date`,
}

// queryAffectedEnrolments finds enrolments past their end date with
// auto-renew off while non-cancelled lessons are still scheduled.
// Lesson status 2 is CANCELLED in the legacy schema.
var queryAffectedEnrolments = query{
	mysql: `
	SELECT
		e.id as enrolment_id,
		s.first_name,
		s.last_name,
		s.customer_id,
		e.endDateTime,
		e.isAutoRenew,
		c.name as course_name
	FROM
		enrolment e
		JOIN student s ON e.studentId = s.id
		JOIN course c ON e.courseId = c.id
	WHERE
		e.endDateTime <= ?
		AND e.isAutoRenew = 0
		AND EXISTS (
			SELECT 1
			FROM lesson l
			WHERE
				l.courseId = e.courseId
				AND l.date > ?
				AND l.status != 2
		)
	ORDER BY
		e.endDateTime
	LIMIT 100`,
}

var queryCustomerEnrolments = query{
	mysql: `
	SELECT
		e.id as enrolment_id,
		CONCAT(s.first_name, ' ', s.last_name) as student_name,
		c.name as course_name,
		pf.name as payment_frequency,
		e.startDateTime,
		e.endDateTime,
		e.isAutoRenew
	FROM
		enrolment e
		JOIN student s ON e.studentId = s.id
		JOIN course c ON e.courseId = c.id
		JOIN payment_frequency pf ON e.paymentFrequencyId = pf.id
	WHERE
		s.customer_id = ?
	ORDER BY
		e.startDateTime DESC
	LIMIT 100`,
}

// Wide analysis datasets below join the newer invoice-centric tables.
// They feed the dashboard extracts and carry larger row limits.

const paymentDataBase = `
	SELECT
		p.id as payment_id,
		p.amount,
		p.created_at as payment_date,
		p.status,
		p.payment_method,
		a.id as account_id,
		CONCAT(c.first_name, ' ', c.last_name) as customer_name,
		i.id as invoice_id,
		i.amount as invoice_amount,
		i.created_at as invoice_date,
		l.id as lesson_id,
		l.date as lesson_date,
		l.status as lesson_status,
		e.id as enrollment_id,
		c.id as customer_id
	FROM
		payment p
	LEFT JOIN
		account a ON p.account_id = a.id
	LEFT JOIN
		customer c ON a.customer_id = c.id
	LEFT JOIN
		payment_invoice pi ON p.id = pi.payment_id
	LEFT JOIN
		invoice i ON pi.invoice_id = i.id
	LEFT JOIN
		invoice_lesson il ON i.id = il.invoice_id
	LEFT JOIN
		lesson l ON il.lesson_id = l.id
	LEFT JOIN
		enrollment e ON l.enrollment_id = e.id
	WHERE
		p.deleted_at IS NULL`

const paymentDataSuffix = `
	ORDER BY
		p.created_at DESC
	LIMIT ?`

var queryPaymentCycleData = query{
	mysql: `
	SELECT
		p.id as payment_id,
		p.amount,
		p.created_at as payment_date,
		YEAR(p.created_at) * 100 + MONTH(p.created_at) as payment_yearmonth,
		a.id as account_id,
		i.id as invoice_id,
		i.created_at as invoice_date,
		YEAR(i.created_at) * 100 + MONTH(i.created_at) as invoice_yearmonth,
		DATEDIFF(i.created_at, p.created_at) as days_difference,
		pi.amount as applied_amount,
		e.billing_cycle_day
	FROM
		payment p
	JOIN
		account a ON p.account_id = a.id
	JOIN
		payment_invoice pi ON p.id = pi.payment_id
	JOIN
		invoice i ON pi.invoice_id = i.id
	LEFT JOIN
		invoice_lesson il ON i.id = il.invoice_id
	LEFT JOIN
		lesson l ON il.lesson_id = l.id
	LEFT JOIN
		enrollment e ON l.enrollment_id = e.id
	WHERE
		p.deleted_at IS NULL
		AND i.deleted_at IS NULL
	ORDER BY
		p.created_at DESC
	LIMIT 5000`,
	postgres: `
	SELECT
		p.id as payment_id,
		p.amount,
		p.created_at as payment_date,
		EXTRACT(YEAR FROM p.created_at)::int * 100 + EXTRACT(MONTH FROM p.created_at)::int as payment_yearmonth,
		a.id as account_id,
		i.id as invoice_id,
		i.created_at as invoice_date,
		EXTRACT(YEAR FROM i.created_at)::int * 100 + EXTRACT(MONTH FROM i.created_at)::int as invoice_yearmonth,
		i.created_at::date - p.created_at::date as days_difference,
		pi.amount as applied_amount,
		e.billing_cycle_day
	FROM
		payment p
	JOIN
		account a ON p.account_id = a.id
	JOIN
		payment_invoice pi ON p.id = pi.payment_id
	JOIN
		invoice i ON pi.invoice_id = i.id
	LEFT JOIN
		invoice_lesson il ON i.id = il.invoice_id
	LEFT JOIN
		lesson l ON il.lesson_id = l.id
	LEFT JOIN
		enrollment e ON l.enrollment_id = e.id
	WHERE
		p.deleted_at IS NULL
		AND i.deleted_at IS NULL
	ORDER BY
		p.created_at DESC
	LIMIT 5000`,
}

// queryMisappliedPayments flags payments recorded more than 15 days
// after the invoice they were applied to.
var queryMisappliedPayments = query{
	mysql: `
	SELECT
		p.id as payment_id,
		p.amount as payment_amount,
		p.created_at as payment_date,
		YEAR(p.created_at) * 100 + MONTH(p.created_at) as payment_yearmonth,
		a.id as account_id,
		CONCAT(c.first_name, ' ', c.last_name) as customer_name,
		i.id as invoice_id,
		i.created_at as invoice_date,
		YEAR(i.created_at) * 100 + MONTH(i.created_at) as invoice_yearmonth,
		pi.amount as applied_amount,
		DATEDIFF(p.created_at, i.created_at) as days_difference,
		e.billing_cycle_day
	FROM
		payment p
	JOIN
		account a ON p.account_id = a.id
	JOIN
		customer c ON a.customer_id = c.id
	JOIN
		payment_invoice pi ON p.id = pi.payment_id
	JOIN
		invoice i ON pi.invoice_id = i.id
	LEFT JOIN
		invoice_lesson il ON i.id = il.invoice_id
	LEFT JOIN
		lesson l ON il.lesson_id = l.id
	LEFT JOIN
		enrollment e ON l.enrollment_id = e.id
	WHERE
		p.deleted_at IS NULL
		AND i.deleted_at IS NULL
		AND p.created_at > i.created_at
		AND DATEDIFF(p.created_at, i.created_at) > 15
	ORDER BY
		days_difference DESC
	LIMIT 5000`,
	postgres: `
	SELECT
		p.id as payment_id,
		p.amount as payment_amount,
		p.created_at as payment_date,
		EXTRACT(YEAR FROM p.created_at)::int * 100 + EXTRACT(MONTH FROM p.created_at)::int as payment_yearmonth,
		a.id as account_id,
		CONCAT(c.first_name, ' ', c.last_name) as customer_name,
		i.id as invoice_id,
		i.created_at as invoice_date,
		EXTRACT(YEAR FROM i.created_at)::int * 100 + EXTRACT(MONTH FROM i.created_at)::int as invoice_yearmonth,
		pi.amount as applied_amount,
		p.created_at::date - i.created_at::date as days_difference,
		e.billing_cycle_day
	FROM
		payment p
	JOIN
		account a ON p.account_id = a.id
	JOIN
		customer c ON a.customer_id = c.id
	JOIN
		payment_invoice pi ON p.id = pi.payment_id
	JOIN
		invoice i ON pi.invoice_id = i.id
	LEFT JOIN
		invoice_lesson il ON i.id = il.invoice_id
	LEFT JOIN
		lesson l ON il.lesson_id = l.id
	LEFT JOIN
		enrollment e ON l.enrollment_id = e.id
	WHERE
		p.deleted_at IS NULL
		AND i.deleted_at IS NULL
		AND p.created_at > i.created_at
		AND p.created_at::date - i.created_at::date > 15
	ORDER BY
		days_difference DESC
	LIMIT 5000`,
}

const enrolmentDataBase = `
	SELECT
		e.id as enrolment_id,
		e.created_at as enrolment_date,
		p.id as program_id,
		p.name as program_name,
		c.id as customer_id,
		CONCAT(c.first_name, ' ', c.last_name) as customer_name
	FROM
		enrollment e
	JOIN
		program p ON e.program_id = p.id
	JOIN
		customer c ON e.customer_id = c.id
	WHERE
		e.deleted_at IS NULL`

const enrolmentDataSuffix = `
	ORDER BY e.created_at DESC
	LIMIT 1000`

const lessonDataBase = `
	SELECT
		l.id as lesson_id,
		l.date as lesson_date,
		l.status as lesson_status,
		CASE
			WHEN l.group_id IS NULL THEN 'Private'
			ELSE 'Group'
		END as lesson_type,
		e.id as enrolment_id,
		c.id as customer_id,
		CONCAT(c.first_name, ' ', c.last_name) as customer_name
	FROM
		lesson l
	JOIN
		enrollment e ON l.enrollment_id = e.id
	JOIN
		customer c ON e.customer_id = c.id
	WHERE
		l.deleted_at IS NULL`

const lessonDataSuffix = `
	ORDER BY l.date DESC
	LIMIT 1000`

const invoiceDataBase = `
	SELECT
		i.id as invoice_id,
		i.created_at as invoice_date,
		i.amount,
		i.status,
		a.id as account_id,
		c.id as customer_id,
		CONCAT(c.first_name, ' ', c.last_name) as customer_name,
		il.lesson_id
	FROM
		invoice i
	JOIN
		account a ON i.account_id = a.id
	JOIN
		customer c ON a.customer_id = c.id
	LEFT JOIN
		invoice_lesson il ON i.id = il.invoice_id
	WHERE
		i.deleted_at IS NULL`

const invoiceDataSuffix = `
	ORDER BY i.created_at DESC
	LIMIT 1000`

const customerIDFilter = `
		AND c.id = ?`
