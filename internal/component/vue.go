package component

// vueTreeJS walks Vue 3's internal vnode tree (app.__vue_app__._instance or
// root.__vueParentComponent), falling back to Vue 2's _vnode/$children.
const vueTreeJS = `
(selector, maxDepth, includeProps) => {
	const root = selector ? document.querySelector(selector) : document.body;
	if (!root) return [];

	const sanitize = (v) => {
		if (v === null || v === undefined) return v;
		const t = typeof v;
		if (t === 'string' || t === 'number' || t === 'boolean') return v;
		if (t === 'function') return '[Function ' + (v.name || 'anonymous') + ']';
		if (t === 'object') {
			try { return JSON.parse(JSON.stringify(v)); } catch (e) { return '[Object]'; }
		}
		return undefined;
	};

	const instanceOf = (el) => el.__vueParentComponent || el.__vue_app__ || el.__vue__ || null;

	const walk = (inst, depth) => {
		if (!inst || depth > maxDepth) return null;
		const type = inst.type || inst.$options || {};
		const name = type.name || type.__name || (inst.$vnode && inst.$vnode.tag) || 'AnonymousComponent';
		const node = { name: name, framework: 'vue', depth: depth, children: [] };

		if (includeProps) {
			const props = inst.props || (inst.$props) || {};
			node.props = sanitize(props);
		}

		const subtree = inst.subTree || (inst.$children);
		if (inst.subTree) {
			const children = [];
			const collect = (vnode) => {
				if (!vnode) return;
				if (vnode.component) children.push(vnode.component);
				if (Array.isArray(vnode.children)) vnode.children.forEach(collect);
				else if (vnode.children && vnode.children.default) {}
			};
			collect(inst.subTree);
			for (const child of children) {
				const c = walk(child, depth + 1);
				if (c) node.children.push(c);
			}
		} else if (Array.isArray(inst.$children)) {
			for (const child of inst.$children) {
				const c = walk(child, depth + 1);
				if (c) node.children.push(c);
			}
		}
		return node;
	};

	const inst = instanceOf(root) && (root.__vueParentComponent || (root.__vue_app__ && root.__vue_app__._instance) || root.__vue__);
	const result = inst ? walk(inst, 0) : null;
	return result ? [result] : [];
}
`

const vueStateJS = `
(selector) => {
	const el = document.querySelector(selector);
	if (!el) return null;
	const inst = el.__vueParentComponent || el.__vue__;
	if (!inst) return null;
	const state = inst.setupState || inst.data || inst._data || {};
	try { return JSON.parse(JSON.stringify(state)); } catch (e) { return {}; }
}
`
