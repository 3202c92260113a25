package dto

import "golang.org/x/text/language"

// SupportedLanguages are the languages error messages are localized into.
// The first entry is the fallback.
var SupportedLanguages = []language.Tag{
	language.English,
	language.Spanish,
	language.French,
}

var languageMatcher = language.NewMatcher(SupportedLanguages)

// generic English message per API error code
var errorMessages = map[string]string{
	ErrCodeInternal:            "An unexpected error occurred",
	ErrCodeValidation:          "Request validation failed",
	ErrCodeInvalidInput:        "The request was rejected",
	ErrCodeBadRequest:          "Malformed request",
	ErrCodeInvalidJSON:         "Request body is not valid JSON",
	ErrCodeRequestTooLarge:     "Request body exceeds maximum allowed size",
	ErrCodeUnauthorized:        "Authentication required",
	ErrCodeForbidden:           "Access to this merchant is not allowed",
	ErrCodeTokenExpired:        "Token has expired",
	ErrCodeTokenInvalid:        "Invalid token",
	ErrCodeNotFound:            "Resource not found",
	ErrCodeAlreadyExists:       "Resource already exists",
	ErrCodeConcurrencyConflict: "Resource was modified by another process",
	ErrCodeSyncInProgress:      "A synchronization is already running for this merchant",
	ErrCodeUpstream:            "The commerce platform returned an invalid response",
	ErrCodeUpstreamUnavailable: "The commerce platform is temporarily unavailable",
	ErrCodeRateLimited:         "Too many requests",
}

var translations = map[language.Tag]map[string]string{
	language.Spanish: {
		ErrCodeInternal:            "Se produjo un error inesperado",
		ErrCodeValidation:          "La validación de la solicitud falló",
		ErrCodeInvalidInput:        "La solicitud fue rechazada",
		ErrCodeBadRequest:          "Solicitud mal formada",
		ErrCodeInvalidJSON:         "El cuerpo de la solicitud no es JSON válido",
		ErrCodeRequestTooLarge:     "El cuerpo de la solicitud supera el tamaño máximo permitido",
		ErrCodeUnauthorized:        "Se requiere autenticación",
		ErrCodeForbidden:           "No se permite el acceso a este comercio",
		ErrCodeTokenExpired:        "El token ha caducado",
		ErrCodeTokenInvalid:        "Token no válido",
		ErrCodeNotFound:            "Recurso no encontrado",
		ErrCodeAlreadyExists:       "El recurso ya existe",
		ErrCodeConcurrencyConflict: "Otro proceso modificó el recurso",
		ErrCodeSyncInProgress:      "Ya hay una sincronización en curso para este comercio",
		ErrCodeUpstream:            "La plataforma de comercio devolvió una respuesta no válida",
		ErrCodeUpstreamUnavailable: "La plataforma de comercio no está disponible temporalmente",
		ErrCodeRateLimited:         "Demasiadas solicitudes",
	},
	language.French: {
		ErrCodeInternal:            "Une erreur inattendue s'est produite",
		ErrCodeValidation:          "La validation de la requête a échoué",
		ErrCodeInvalidInput:        "La requête a été refusée",
		ErrCodeBadRequest:          "Requête mal formée",
		ErrCodeInvalidJSON:         "Le corps de la requête n'est pas un JSON valide",
		ErrCodeRequestTooLarge:     "Le corps de la requête dépasse la taille maximale autorisée",
		ErrCodeUnauthorized:        "Authentification requise",
		ErrCodeForbidden:           "L'accès à ce commerçant n'est pas autorisé",
		ErrCodeTokenExpired:        "Le jeton a expiré",
		ErrCodeTokenInvalid:        "Jeton invalide",
		ErrCodeNotFound:            "Ressource introuvable",
		ErrCodeAlreadyExists:       "La ressource existe déjà",
		ErrCodeConcurrencyConflict: "La ressource a été modifiée par un autre processus",
		ErrCodeSyncInProgress:      "Une synchronisation est déjà en cours pour ce commerçant",
		ErrCodeUpstream:            "La plateforme de commerce a renvoyé une réponse invalide",
		ErrCodeUpstreamUnavailable: "La plateforme de commerce est temporairement indisponible",
		ErrCodeRateLimited:         "Trop de requêtes",
	},
}

// MatchLanguage picks the supported language for an Accept-Language header
func MatchLanguage(acceptLanguage string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return language.English
	}
	_, idx, _ := languageMatcher.Match(tags...)
	return SupportedLanguages[idx]
}

// LocalizeMessage returns the message to send for code in the language of
// acceptLanguage. English clients get the detailed message when there is one;
// other languages get the translated generic message for the code.
func LocalizeMessage(acceptLanguage, code, detail string) string {
	tag := MatchLanguage(acceptLanguage)
	generic, ok := errorMessages[code]
	if tag == language.English || !ok {
		if detail != "" {
			return detail
		}
		return generic
	}
	if text, ok := translations[tag][code]; ok {
		return text
	}
	return generic
}
