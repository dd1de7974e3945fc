package api

// Response messages shown to users.
const (
	msgNotFound         = "Tarea no encontrada"
	msgRouteNotFound    = "Ruta no encontrada"
	msgMethodNotAllowed = "Método no permitido"
	msgInternal         = "Error interno del servidor"
	msgTitleRequired    = "El título de la tarea es requerido y debe ser una cadena no vacía"
	msgTitleInvalid     = "El título debe ser una cadena no vacía"
	msgCompletedInvalid = "El campo completed debe ser un valor booleano"
	msgNoUpdateFields   = "No se proporcionaron datos para actualizar"
	msgInvalidJSON      = "El cuerpo de la solicitud no es JSON válido"
	msgBodyNotObject    = "El cuerpo de la solicitud debe ser un objeto JSON"
	msgBodyTooLarge     = "El cuerpo de la solicitud es demasiado grande"
	msgInvalidFilter    = "Filtro inválido: use all, pending o completed"
	msgStorageUnhealthy = "El archivo de tareas no está disponible"
	msgCreated          = "Tarea creada exitosamente"
	msgUpdated          = "Tarea actualizada exitosamente"
	msgDeleted          = "Tarea eliminada exitosamente"
	msgListFailed       = "Error al obtener las tareas"
	msgGetFailed        = "Error al obtener la tarea"
	msgCreateFailed     = "Error al crear la tarea"
	msgUpdateFailed     = "Error al actualizar la tarea"
	msgDeleteFailed     = "Error al eliminar la tarea"
	msgAPITitle         = "API de Gestión de Tareas"
)
