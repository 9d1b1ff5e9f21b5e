package builtins

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"

	"github.com/tj-mc/tilde-sub001/internal/object"
)

var dbConnections = map[int64]*sql.DB{}

func init() {
	register("db-connect", evalDBConnect)
	register("db-query", evalDBQuery)
	register("db-exec", evalDBExec)
	register("db-close", evalDBClose)
}

func evalDBConnect(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 2 {
		return ctx.NewError("db-connect requires exactly 2 arguments (driver, connection string)")
	}
	driver, err := asString(ctx, args[0], "db-connect", "driver")
	if err != nil {
		return err
	}
	connStr, err := asString(ctx, args[1], "db-connect", "connection string")
	if err != nil {
		return err
	}

	db, openErr := sql.Open(driver, connStr)
	if openErr != nil {
		return ctx.NewError("failed to open connection: %v", openErr)
	}
	if pingErr := db.Ping(); pingErr != nil {
		db.Close()
		return ctx.NewError("failed to ping database: %v", pingErr)
	}

	id := ctx.NextHandleID()
	dbConnections[id] = db
	return number(float64(id))
}

func evalDBQuery(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) < 2 {
		return ctx.NewError("db-query requires at least 2 arguments (connection, sql)")
	}
	db, err := connectionArg(ctx, args[0], "db-query")
	if err != nil {
		return err
	}
	query, err := asString(ctx, args[1], "db-query", "sql")
	if err != nil {
		return err
	}

	rows, queryErr := db.Query(query, queryParams(args[2:])...)
	if queryErr != nil {
		return ctx.NewError("query failed: %v", queryErr)
	}
	defer rows.Close()

	return renderRows(ctx, rows)
}

func evalDBExec(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) < 2 {
		return ctx.NewError("db-exec requires at least 2 arguments (connection, sql)")
	}
	db, err := connectionArg(ctx, args[0], "db-exec")
	if err != nil {
		return err
	}
	query, err := asString(ctx, args[1], "db-exec", "sql")
	if err != nil {
		return err
	}

	result, execErr := db.Exec(query, queryParams(args[2:])...)
	if execErr != nil {
		return ctx.NewError("exec failed: %v", execErr)
	}

	affected, _ := result.RowsAffected()
	lastID, _ := result.LastInsertId()

	out := object.NewMap()
	out.Put("rows-affected", number(float64(affected)))
	out.Put("last-insert-id", number(float64(lastID)))
	return out
}

func evalDBClose(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) != 1 {
		return ctx.NewError("db-close requires exactly 1 argument (connection)")
	}
	handle, err := asNumber(ctx, args[0], "db-close", "connection")
	if err != nil {
		return err
	}
	id := int64(handle)
	db, ok := dbConnections[id]
	if !ok {
		return ctx.NewError("invalid connection handle")
	}
	db.Close()
	delete(dbConnections, id)
	return ctx.Null()
}

func connectionArg(ctx object.EvaluatorContext, arg object.Object, fn string) (*sql.DB, *object.Error) {
	handle, err := asNumber(ctx, arg, fn, "connection")
	if err != nil {
		return nil, err
	}
	db, ok := dbConnections[int64(handle)]
	if !ok {
		return nil, ctx.NewError("invalid connection handle")
	}
	return db, nil
}

func queryParams(args []object.Object) []interface{} {
	params := make([]interface{}, len(args))
	for i, arg := range args {
		switch v := arg.(type) {
		case *object.Number:
			params[i] = v.Value
		case *object.Boolean:
			params[i] = v.Value
		case *object.Null:
			params[i] = nil
		default:
			params[i] = arg.Inspect()
		}
	}
	return params
}

func renderRows(ctx object.EvaluatorContext, rows *sql.Rows) object.Object {
	columns, _ := rows.Columns()
	resultRows := []object.Object{}

	for rows.Next() {
		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return ctx.NewError("scan failed: %v", err)
		}

		row := object.NewMap()
		for i, col := range columns {
			row.Put(col, columnValue(ctx, values[i]))
		}
		resultRows = append(resultRows, row)
	}
	if err := rows.Err(); err != nil {
		return ctx.NewError("query failed: %v", err)
	}
	return &object.List{Elements: resultRows}
}

func columnValue(ctx object.EvaluatorContext, v interface{}) object.Object {
	if v == nil {
		return ctx.Null()
	}
	switch x := v.(type) {
	case int64:
		return number(float64(x))
	case float64:
		return number(x)
	case []byte:
		return str(string(x))
	case string:
		return str(x)
	case bool:
		return ctx.NativeBoolToBooleanObject(x)
	case time.Time:
		return str(x.Format(time.RFC3339))
	default:
		return str(fmt.Sprintf("%v", v))
	}
}
