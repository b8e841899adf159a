package database

const SelectNowSQL = `SELECT NOW()`

// Usuario queries. The password column is only ever written.
const (
	ListUsuariosSQL = `
		SELECT id, nombre, email, rol, activo, created_at
		FROM usuarios
		ORDER BY id`

	GetUsuarioByIDSQL = `
		SELECT id, nombre, email, rol, activo, created_at
		FROM usuarios WHERE id = $1`

	InsertUsuarioSQL = `
		INSERT INTO usuarios (nombre, email, password, rol)
		VALUES ($1, $2, $3, $4)
		RETURNING id, nombre, email, rol, activo, created_at`
)

// Producto queries
const (
	ListProductosSQL = `
		SELECT p.id, p.nombre, p.descripcion, p.precio, p.categoria_id, c.nombre AS categoria_nombre,
			   p.disponible, p.imagen_url, p.created_at
		FROM productos p
		LEFT JOIN categorias c ON p.categoria_id = c.id
		ORDER BY p.id`

	InsertProductoSQL = `
		INSERT INTO productos (nombre, descripcion, precio, categoria_id, disponible, imagen_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, nombre, descripcion, precio, categoria_id, disponible, imagen_url, created_at`
)

// Mesa queries
const (
	ListMesasSQL = `
		SELECT id, numero, capacidad, estado, created_at
		FROM mesas
		ORDER BY numero`

	UpdateMesaEstadoSQL = `
		UPDATE mesas SET estado = $1 WHERE id = $2`
)

// Comanda queries
const (
	ListComandasSQL = `
		SELECT c.id, c.mesa_id, c.usuario_id, c.estado, c.total, c.observaciones, c.created_at, c.updated_at,
			   m.numero AS mesa_numero, u.nombre AS usuario_nombre
		FROM comandas c
		LEFT JOIN mesas m ON c.mesa_id = m.id
		LEFT JOIN usuarios u ON c.usuario_id = u.id
		ORDER BY c.created_at DESC`

	InsertComandaSQL = `
		INSERT INTO comandas (mesa_id, usuario_id, observaciones)
		VALUES ($1, $2, $3)
		RETURNING id, mesa_id, usuario_id, estado, total, observaciones, created_at, updated_at`

	InsertComandaItemSQL = `
		INSERT INTO comanda_items (comanda_id, producto_id, cantidad, precio_unitario, subtotal, observaciones)
		VALUES ($1, $2, $3, $4, $5, $6)`

	UpdateComandaTotalSQL = `
		UPDATE comandas SET total = $1 WHERE id = $2`

	UpdateComandaEstadoSQL = `
		UPDATE comandas SET estado = $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2
		RETURNING id, mesa_id, usuario_id, estado, total, observaciones, created_at, updated_at`
)
