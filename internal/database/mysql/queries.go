package mysql

// SQL queries for MySQL metadata introspection.
const queryGetColumns = `
	SELECT
		COLUMN_NAME,
		DATA_TYPE,
		IS_NULLABLE,
		COLUMN_DEFAULT,
		ORDINAL_POSITION,
		COLUMN_KEY
	FROM information_schema.columns
	WHERE table_schema = DATABASE()
	  AND table_name = ?
	ORDER BY ORDINAL_POSITION`
