package domain

// Fixed caller-facing messages. These are the only texts the engine ever
// returns for rejected, empty-knowledge or failed queries; collaborator
// error details are never leaked to the end user.

// OutOfScopeMessage is returned when the query-side scope gate rejects.
func OutOfScopeMessage(lang Language) string {
	if lang == LanguageArabic {
		return "أعتذر، يمكنني فقط الإجابة عن الأسئلة المتعلقة بالهيئة والعمل. كيف يمكنني مساعدتك في شؤون العمل؟"
	}
	return "I apologize, I can only answer questions related to the organization and work. How can I help you with work-related matters?"
}

// EscalationMessage is returned when no grounded answer exists: empty
// retrieval, or an answer rejected by the grounding gate.
func EscalationMessage(lang Language) string {
	if lang == LanguageArabic {
		return "آسف، لا أملك هذه المعلومة في قاعدة المعرفة. هل تريد التحويل لموظف بشري؟"
	}
	return "Sorry, I don't have this information in the knowledge base. Would you like me to transfer you to a human?"
}

// UnavailableMessage is returned when a collaborator failure prevents
// answering.
func UnavailableMessage(lang Language) string {
	if lang == LanguageArabic {
		return "عذراً، حدث خطأ في معالجة طلبك. يرجى المحاولة مرة أخرى أو التحويل لموظف بشري."
	}
	return "Sorry, an error occurred while processing your request. Please try again or transfer to a human."
}
